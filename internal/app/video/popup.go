// Package video tracks which run video a viewer has open.
package video

import (
	"context"
	"sync"

	"github.com/okian/runboard/internal/domain/model"
	"github.com/okian/runboard/internal/domain/runs"
)

// Emitter forwards outbound events. It returns false when the event was
// dropped.
type Emitter interface {
	Emit(ctx context.Context, e model.Event) bool
}

// Popup holds the active embed URL of one viewer.
type Popup struct {
	emit Emitter

	mu     sync.Mutex
	active *string
}

// NewPopup creates a closed popup. A nil emitter discards events.
func NewPopup(emit Emitter) *Popup {
	return &Popup{emit: emit}
}

// Open shows the video at url. YouTube links become autoplay embeds. It
// returns false when the same video is already open.
func (p *Popup) Open(ctx context.Context, url string) (string, bool) {
	embed := runs.EmbedURL(url)

	p.mu.Lock()
	if p.active != nil && *p.active == embed {
		p.mu.Unlock()
		return embed, false
	}
	p.active = &embed
	p.mu.Unlock()

	p.send(ctx, &embed)
	return embed, true
}

// Close hides the video.
func (p *Popup) Close(ctx context.Context) {
	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()

	p.send(ctx, nil)
}

// Active returns the open embed URL, or nil.
func (p *Popup) Active() *string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return nil
	}
	v := *p.active
	return &v
}

func (p *Popup) send(ctx context.Context, embed *string) {
	if p.emit == nil {
		return
	}
	p.emit.Emit(ctx, model.Event{Kind: model.EventVideoRequested, EmbedURL: embed})
}
