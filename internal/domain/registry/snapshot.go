package registry

import "github.com/GriffinCanCode/AgentOS/media/internal/shared/types"

// SessionInfo is a read-only view of one session
type SessionInfo struct {
	ID         string `json:"id"`
	Target     string `json:"target"`
	URL        string `json:"url"`
	CurrentURL string `json:"current_url"`
	MimeType   string `json:"mime_type"`
	Backend    string `json:"backend,omitempty"`
	NavState   string `json:"nav_state"`
	Status     string `json:"status"`
	Visible    bool   `json:"visible"`
	Focused    bool   `json:"focused"`
	Failed     bool   `json:"failed"`
	Running    bool   `json:"running"`
	TextureW   int    `json:"texture_width"`
	TextureH   int    `json:"texture_height"`
}

// Snapshot returns the session views published by the last tick. Safe for
// concurrent use.
func (r *Registry) Snapshot() []SessionInfo {
	if p := r.snapshot.Load(); p != nil {
		return *p
	}
	return nil
}

func (r *Registry) publish() {
	infos := make([]SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		texW, texH := s.TextureSize()
		target := ""
		if s.Target() != types.NilTarget {
			target = s.Target().String()
		}
		infos = append(infos, SessionInfo{
			ID:         s.ID().String(),
			Target:     target,
			URL:        s.URL(),
			CurrentURL: s.CurrentURL(),
			MimeType:   s.MimeType(),
			Backend:    s.Backend(),
			NavState:   s.NavState().String(),
			Status:     s.Status().String(),
			Visible:    s.Visible(),
			Focused:    s.Focused(),
			Failed:     s.Failed(),
			Running:    s.HasProcess(),
			TextureW:   texW,
			TextureH:   texH,
		})
	}
	r.snapshot.Store(&infos)
}
