package retrieval

import "github.com/aldeia/advisor/core"

// RetrievalMonitor provides hooks to observe the ranking pipeline.
// Implement this interface to track intermediate steps during retrieval.
type RetrievalMonitor interface {
	Start(query string)
	AfterVectorQuery(matches []core.Match)
	Ungrounded(nearestDistance float64)
	AfterKeywordSelect(selected core.Match, byKeyword bool)
	AfterChunkMerge(merged int)
	Finish(result *core.RetrievalResult)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                       {}
func (n *noopMonitor) AfterVectorQuery(_ []core.Match)      {}
func (n *noopMonitor) Ungrounded(_ float64)                 {}
func (n *noopMonitor) AfterKeywordSelect(_ core.Match, _ bool) {}
func (n *noopMonitor) AfterChunkMerge(_ int)                {}
func (n *noopMonitor) Finish(_ *core.RetrievalResult)       {}
