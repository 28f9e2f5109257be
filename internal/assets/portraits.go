package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Painter renders an appearance prompt into PNG bytes. The concrete image
// service is deliberately behind this interface; portrait failures never
// fail a pipeline run.
type Painter interface {
	Paint(ctx context.Context, prompt string) ([]byte, error)
}

// HTTPPainter calls an external image service: POST {"prompt": ...} and the
// raw image back.
type HTTPPainter struct {
	URL    string
	Client *http.Client
}

func NewHTTPPainter(url string) *HTTPPainter {
	return &HTTPPainter{URL: url, Client: &http.Client{Timeout: 2 * time.Minute}}
}

func (p *HTTPPainter) Paint(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image service: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Generator paints a portrait and stores it, returning a serveable URL.
// Implements the orchestrator's portrait hook.
type Generator struct {
	Painter Painter
	Store   *PortraitStore
}

func (g *Generator) Portrait(ctx context.Context, storyID, characterID, prompt string) (string, error) {
	img, err := g.Painter.Paint(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := g.Store.Put(ctx, storyID, characterID, img); err != nil {
		return "", err
	}
	return g.Store.URL(ctx, storyID, characterID)
}
