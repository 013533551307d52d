package entity

// Renderer draws simulation entities
type Renderer interface {
	RenderBody(body *Body)
	RenderShip(ship *Ship)
	RenderAnomaly(anomaly *Anomaly)
	Clear()
	Present()
}
