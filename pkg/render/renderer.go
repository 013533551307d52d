// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-orrery/pkg/entity"
	"github.com/opd-ai/go-orrery/pkg/logging"
	"github.com/opd-ai/go-orrery/pkg/resource"
)

// Palette resolves texture keys to display colours.
type Palette interface {
	Appearance(key string) resource.Appearance
}

// NullRenderer draws nothing. It counts calls and logs them at debug
// level, which is all a headless run needs.
type NullRenderer struct {
	logger *logging.Logger

	Frames    int
	Bodies    int
	Ships     int
	Anomalies int
}

// NewNullRenderer creates a NullRenderer. A nil logger discards output.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	return &NullRenderer{logger: logger}
}

// Clear implements entity.Renderer.
func (d *NullRenderer) Clear() {
	d.Bodies, d.Ships, d.Anomalies = 0, 0, 0
}

// Present implements entity.Renderer.
func (d *NullRenderer) Present() {
	d.Frames++
	d.logger.Debug(context.Background(), "frame presented",
		"frame", d.Frames,
		"bodies", d.Bodies,
		"ships", d.Ships,
		"anomalies", d.Anomalies,
	)
}

// RenderBody implements entity.Renderer.
func (d *NullRenderer) RenderBody(body *entity.Body) {
	if body == nil {
		return
	}
	d.Bodies++
}

// RenderShip implements entity.Renderer.
func (d *NullRenderer) RenderShip(ship *entity.Ship) {
	if ship == nil {
		return
	}
	d.Ships++
}

// RenderAnomaly implements entity.Renderer.
func (d *NullRenderer) RenderAnomaly(anomaly *entity.Anomaly) {
	if anomaly == nil {
		return
	}
	d.Anomalies++
}
