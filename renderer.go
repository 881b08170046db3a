package voodoo

// Renderer is the 3D rendering collaborator. The engine tells it which
// objects belong to which pass and asks it to draw a layer when the layer's
// content changed on screen. Culling, ray intersection and world matrices are
// computed by the engine; a Renderer only draws.
type Renderer interface {
	// AddObject is called when obj enters a scene in the given pass.
	AddObject(pass LayerPass, obj *Object)
	// RemoveObject is called when obj leaves its scene.
	RemoveObject(pass LayerPass, obj *Object)
	// RenderLayer draws every visible object of the layer with the layer's
	// camera. Use Layer.EachObject to walk it.
	RenderLayer(layer *Layer) error
}

// NopRenderer draws nothing. It is used for headless engines and tests.
type NopRenderer struct{}

// AddObject does nothing.
func (NopRenderer) AddObject(LayerPass, *Object) {}

// RemoveObject does nothing.
func (NopRenderer) RemoveObject(LayerPass, *Object) {}

// RenderLayer does nothing.
func (NopRenderer) RenderLayer(*Layer) error { return nil }
