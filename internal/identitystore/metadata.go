// Copyright 2026 The HackGate Authors
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

package identitystore

import "encoding/json"

// Metadata is one of an account's two attribute bags. The keys HackGate
// reads and writes are declared as fields; every other key round-trips
// through Extra untouched, so a merge never drops data another system put
// there.
type Metadata struct {
	Role     string
	UserRole string
	Name     string
	Extra    map[string]any
}

const (
	metaKeyRole     = "role"
	metaKeyUserRole = "user_role"
	metaKeyName     = "name"
)

// MarshalJSON encodes the known fields alongside the preserved unknown keys.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+3)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Role != "" {
		out[metaKeyRole] = m.Role
	}
	if m.UserRole != "" {
		out[metaKeyUserRole] = m.UserRole
	}
	if m.Name != "" {
		out[metaKeyName] = m.Name
	}
	return json.Marshal(out)
}

// UnmarshalJSON pulls out the known keys and keeps the rest in Extra.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Metadata{}
	for k, v := range raw {
		s, isString := v.(string)
		switch {
		case k == metaKeyRole && isString:
			m.Role = s
		case k == metaKeyUserRole && isString:
			m.UserRole = s
		case k == metaKeyName && isString:
			m.Name = s
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[k] = v
		}
	}
	return nil
}

// Merge overlays non-empty fields of other onto a copy of m. Unknown keys
// from both bags survive; on collision the overlay wins.
func (m Metadata) Merge(other Metadata) Metadata {
	merged := m
	if other.Role != "" {
		merged.Role = other.Role
	}
	if other.UserRole != "" {
		merged.UserRole = other.UserRole
	}
	if other.Name != "" {
		merged.Name = other.Name
	}
	if len(other.Extra) > 0 {
		extra := make(map[string]any, len(m.Extra)+len(other.Extra))
		for k, v := range m.Extra {
			extra[k] = v
		}
		for k, v := range other.Extra {
			extra[k] = v
		}
		merged.Extra = extra
	}
	return merged
}
