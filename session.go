package session

import (
	"encoding/json"
	"fmt"
)

// Session is the published snapshot of the current sign-in. Values are
// copies; mutating a snapshot never affects the controller's state.
type Session struct {
	AccessToken string  `json:"access_token,omitempty"`
	User        Profile `json:"user,omitempty"`
	Role        string  `json:"role,omitempty"`
	UserName    string  `json:"user_name,omitempty"`
}

// IsAuthenticated reports whether the session holds both a token and a
// user profile. One without the other never counts as signed in.
func (s Session) IsAuthenticated() bool {
	return s.AccessToken != "" && s.User != nil
}

func (s Session) clone() Session {
	out := s
	if s.User != nil {
		out.User = make(Profile, len(s.User))
		for k, v := range s.User {
			out.User[k] = v
		}
	}
	return out
}

// record converts the session to its durable form. The profile is carried
// as a JSON string so the store only ever sees opaque string fields.
func (s Session) record() Record {
	rec := Record{
		AccessToken: s.AccessToken,
		Role:        s.Role,
		UserName:    s.UserName,
	}
	if s.User != nil {
		if raw, err := json.Marshal(s.User); err == nil {
			rec.User = string(raw)
		}
	}
	return rec
}

// sessionFromRecord rebuilds a session from storage. A corrupt profile
// field degrades to an absent user rather than failing the load.
func sessionFromRecord(rec Record, logger Logger) Session {
	s := Session{
		AccessToken: rec.AccessToken,
		Role:        rec.Role,
		UserName:    rec.UserName,
	}

	if rec.User != "" {
		var user Profile
		if err := json.Unmarshal([]byte(rec.User), &user); err != nil {
			if logger != nil {
				logger.Warn("stored profile is not valid JSON, dropping it: %v", err)
			}
		} else {
			s.User = user
		}
	}

	return s
}

func (s Session) String() string {
	return fmt.Sprintf(
		"user=%s role=%s token=%s authenticated=%v",
		s.UserName,
		s.Role,
		maskToken(s.AccessToken),
		s.IsAuthenticated(),
	)
}

func maskToken(token string) string {
	if token == "" {
		return "<none>"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
