// Package voodoo attaches interactive 3D content to 2D page elements.
//
// A page is anything that lays out rectangles in pixel coordinates: an HTML
// document, a UI toolkit, or the [Ebitengine] window driven by [Run]. Voodoo
// keeps 3D content spatially locked to those rectangles, renders it in
// several passes that sit above, below or across the page, and turns raw
// mouse input into high-level events by raycasting into the 3D content.
//
// # Quick start
//
//	eng, _ := voodoo.NewEngine(voodoo.DefaultConfig(), voodoo.NewEbitenRenderer(800, 600))
//	anchor := voodoo.NewBox(400, 400, 200, 200)
//
//	model, _ := eng.NewModel(voodoo.ModelOptions{Name: "cube", Above: true},
//		voodoo.ViewFuncs{OnLoad: func(h *voodoo.ViewHandle) error {
//			cube := voodoo.NewMesh("cube", voodoo.UnitCube)
//			if err := h.Scene().Add(cube); err != nil {
//				return err
//			}
//			return h.Triggers().Add(cube, voodoo.DefaultTriggerID)
//		}})
//	model.Attach(anchor, voodoo.DefaultAttachOptions())
//	model.On(voodoo.EventClick, func(ev voodoo.Event) { /* ... */ })
//
//	voodoo.Run(eng, voodoo.RunConfig{Title: "voodoo"})
//
// Hosts without a window call [Engine.Frame] once per animation frame and
// feed [Engine.MouseMove], [Engine.MouseDown] and [Engine.MouseUp].
//
// # Models, views and layers
//
// A [Model] owns event handlers and components. Its [View] is loaded once
// per layer the model's pass membership maps to; each load gets its own
// [ViewHandle] with a [Scene] and a [Triggers] registry. Layers decide every
// frame whether their content changed on screen and only then ask the
// [Renderer] to draw them.
//
// # Coordinates
//
// World space is page space: x right, y down, one unit per pixel on the
// z=0 plane, z toward the viewer. An unattached scene uses page space
// directly; an attached scene maps its local coordinates onto its element
// (see [AttachOptions]).
//
// Events can be forwarded to a [Donburi] world with the voodoo/ecs package.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package voodoo
