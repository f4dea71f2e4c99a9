// Copyright 2026 Aldeia Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateTurn validates a Turn according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Sender must be user or bot
func ValidateTurn(turn Turn) error {
	if turn.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, ErrEmptyText)
	}
	if err := ValidateSender(turn.Sender); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, err)
	}
	return nil
}

// ValidateSender checks that a Sender value is one of the known senders.
func ValidateSender(sender Sender) error {
	switch sender {
	case SenderUser, SenderBot:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSender, sender)
	}
}

// ValidateProfileForPersistence checks that a profile carries the identity
// key needed to store it externally.
func ValidateProfileForPersistence(profile UserProfile) error {
	if profile.Email == "" {
		return ErrEmailRequired
	}
	return nil
}

// ValidateMatch validates a Match according to domain rules.
//
// Validation rules:
//   - ChunkIndex must be >= 0
//   - Distance must be >= 0
func ValidateMatch(match Match) error {
	if match.ChunkIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidMatch, ErrNegativeChunkIndex)
	}
	if match.Distance < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidMatch, ErrNegativeDistance)
	}
	return nil
}

// SanitizeInput strips characters that could be used for markup or quoting
// injection from user-supplied text.
func SanitizeInput(input string) string {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		switch r {
		case '<', '>', '"', '\'', '`', '\\':
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
