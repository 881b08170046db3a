package voodoo

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// defaultMeshColor is used for meshes whose UserData is not a color.Color.
var defaultMeshColor = color.RGBA{R: 80, G: 180, B: 255, A: 255}

// EbitenRenderer draws every layer into its own offscreen image, so a layer
// that does not need rendering keeps last frame's pixels. Meshes are drawn
// as their projected bounding boxes: the far face shaded, the near face in
// the mesh color. A mesh's color is taken from UserData when it is a
// color.Color.
type EbitenRenderer struct {
	images        [numPasses]*ebiten.Image
	width, height int
	white         *ebiten.Image
	pageImg       *ebiten.Image
}

// NewEbitenRenderer creates a renderer for a window of the given size.
func NewEbitenRenderer(width, height int) *EbitenRenderer {
	r := &EbitenRenderer{white: ebiten.NewImage(1, 1)}
	r.white.Fill(color.White)
	r.resize(width, height)
	return r
}

func (r *EbitenRenderer) resize(width, height int) {
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	for i, img := range r.images {
		if img != nil {
			img.Deallocate()
			r.images[i] = nil
		}
	}
	if r.pageImg != nil {
		r.pageImg.Deallocate()
		r.pageImg = nil
	}
}

func (r *EbitenRenderer) target(pass LayerPass) *ebiten.Image {
	if r.images[pass] == nil {
		r.images[pass] = ebiten.NewImage(r.width, r.height)
	}
	return r.images[pass]
}

// AddObject does nothing; objects are read from the layer when drawing.
func (r *EbitenRenderer) AddObject(LayerPass, *Object) {}

// RemoveObject does nothing.
func (r *EbitenRenderer) RemoveObject(LayerPass, *Object) {}

// RenderLayer redraws the layer's image. Stencil passes draw silhouettes
// only.
func (r *EbitenRenderer) RenderLayer(l *Layer) error {
	if r.width <= 0 || r.height <= 0 {
		return fmt.Errorf("ebiten renderer: no target size: %w", ErrInvalidArgument)
	}
	dst := r.target(l.Pass())
	dst.Clear()
	cam := l.Camera()
	stencil := l.Pass() == PassBelowStencil || l.Pass() == PassSeamStencil
	l.EachObject(func(o *Object) {
		if o.Kind != KindMesh || !o.Visible() {
			return
		}
		box := o.WorldBounds()
		c := meshColor(o)
		if stencil {
			c = color.RGBA{A: 255}
		} else {
			r.fillFace(dst, cam, box, box.Min[2], shade(c))
		}
		r.fillFace(dst, cam, box, box.Max[2], c)
	})
	return nil
}

// fillFace projects the box's x/y extent at depth z and fills the result.
func (r *EbitenRenderer) fillFace(dst *ebiten.Image, cam *Camera, box AABB, z float64, c color.Color) {
	x0, y0, ok0 := cam.ProjectToPage(mgl64.Vec3{box.Min[0], box.Min[1], z})
	x1, y1, ok1 := cam.ProjectToPage(mgl64.Vec3{box.Max[0], box.Max[1], z})
	if !ok0 || !ok1 {
		return
	}
	x0, y0 = cam.PageToClient(x0, y0)
	x1, y1 = cam.PageToClient(x1, y1)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(x1-x0, y1-y0)
	op.GeoM.Translate(x0, y0)
	op.ColorScale.ScaleWithColor(c)
	dst.DrawImage(r.white, op)
}

func meshColor(o *Object) color.Color {
	if c, ok := o.UserData.(color.Color); ok {
		return c
	}
	return defaultMeshColor
}

func shade(c color.Color) color.Color {
	cr, cg, cb, ca := c.RGBA()
	return color.RGBA64{R: uint16(cr * 6 / 10), G: uint16(cg * 6 / 10), B: uint16(cb * 6 / 10), A: uint16(ca)}
}

// Composite draws the layers and the page onto screen: below content, the
// page with holes punched by the below stencil, above content, then the
// seam clipped to the seam stencil. drawPage may be nil.
func (r *EbitenRenderer) Composite(screen *ebiten.Image, drawPage func(page *ebiten.Image)) {
	if img := r.images[PassBelow]; img != nil {
		screen.DrawImage(img, nil)
	}
	if drawPage != nil {
		if r.pageImg == nil {
			r.pageImg = ebiten.NewImage(r.width, r.height)
		}
		r.pageImg.Clear()
		drawPage(r.pageImg)
		if st := r.images[PassBelowStencil]; st != nil {
			r.pageImg.DrawImage(st, &ebiten.DrawImageOptions{Blend: ebiten.BlendDestinationOut})
		}
		screen.DrawImage(r.pageImg, nil)
	}
	if img := r.images[PassAbove]; img != nil {
		screen.DrawImage(img, nil)
	}
	if seam := r.images[PassSeam]; seam != nil {
		if st := r.images[PassSeamStencil]; st != nil {
			seam.DrawImage(st, &ebiten.DrawImageOptions{Blend: ebiten.Blend{
				BlendFactorSourceRGB:        ebiten.BlendFactorZero,
				BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
				BlendFactorDestinationRGB:   ebiten.BlendFactorSourceAlpha,
				BlendFactorDestinationAlpha: ebiten.BlendFactorSourceAlpha,
				BlendOperationRGB:           ebiten.BlendOperationAdd,
				BlendOperationAlpha:         ebiten.BlendOperationAdd,
			}})
		}
		screen.DrawImage(seam, nil)
	}
}

// --- Host ---

// RunConfig configures Run.
type RunConfig struct {
	Title string
	// Width and Height are the initial window size.
	Width, Height int
	// ShowFPS prints the engine frame rate in the top-left corner.
	ShowFPS bool
	// Background fills the screen before compositing.
	Background color.Color
	// WheelStep is the page scroll in pixels per wheel notch. Zero disables
	// wheel scrolling.
	WheelStep float64
	// DrawPage paints the 2D page for the current viewport.
	DrawPage func(page *ebiten.Image, viewport Rect)
	// Update runs before the engine steps each tick.
	Update func() error
}

// Game adapts an Engine to ebiten.Game. The window is the viewport onto the
// page; cursor position and buttons become queued mouse events, the wheel
// scrolls the page and window resizes resize the viewport.
type Game struct {
	engine   *Engine
	renderer *EbitenRenderer
	cfg      RunConfig

	lastCursor Vec2
	hasCursor  bool
	step       bool
}

// NewGame creates the ebiten host for e.
func NewGame(e *Engine, r *EbitenRenderer, cfg RunConfig) *Game {
	return &Game{engine: e, renderer: r, cfg: cfg}
}

// Step requests one engine frame when Config.FrameLoop is disabled.
func (g *Game) Step() { g.step = true }

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.engine.Destroyed() {
		return ebiten.Termination
	}
	if g.cfg.Update != nil {
		if err := g.cfg.Update(); err != nil {
			return err
		}
		if g.engine.Destroyed() {
			return ebiten.Termination
		}
	}
	g.readInput()
	if !g.engine.cfg.FrameLoop {
		if !g.step {
			return nil
		}
		g.step = false
	}
	return g.engine.Frame(1 / float64(ebiten.TPS()))
}

var mouseButtons = [...]struct {
	eb ebiten.MouseButton
	mb MouseButton
}{
	{ebiten.MouseButtonLeft, MouseButtonLeft},
	{ebiten.MouseButtonRight, MouseButtonRight},
	{ebiten.MouseButtonMiddle, MouseButtonMiddle},
}

func (g *Game) readInput() {
	e := g.engine
	mods := readModifiers()

	if g.cfg.WheelStep != 0 {
		if _, wy := ebiten.Wheel(); wy != 0 {
			vp := e.Viewport()
			vp.Y = max(0, vp.Y-wy*g.cfg.WheelStep)
			if err := e.SetViewport(vp); err != nil {
				Logger().Warn("wheel scroll", "err", err)
			}
		}
	}

	cx, cy := ebiten.CursorPosition()
	vp := e.Viewport()
	page := Vec2{X: vp.X + float64(cx), Y: vp.Y + float64(cy)}
	if !g.hasCursor || page != g.lastCursor {
		e.MouseMove(page.X, page.Y, mods)
		g.lastCursor = page
		g.hasCursor = true
	}
	for _, b := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(b.eb) {
			e.MouseDown(page.X, page.Y, b.mb, mods)
		}
		if inpututil.IsMouseButtonJustReleased(b.eb) {
			e.MouseUp(page.X, page.Y, b.mb, mods)
		}
	}
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.cfg.Background != nil {
		screen.Fill(g.cfg.Background)
	}
	var drawPage func(*ebiten.Image)
	if g.cfg.DrawPage != nil {
		vp := g.engine.Viewport()
		drawPage = func(page *ebiten.Image) { g.cfg.DrawPage(page, vp) }
	}
	g.renderer.Composite(screen, drawPage)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", g.engine.FPS(), ebiten.ActualTPS()))
	}
	if g.engine.PendingScreenshots() > 0 {
		g.engine.flushScreenshots(captureNRGBA(screen))
	}
}

// Layout implements ebiten.Game. The viewport follows the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if !g.engine.Destroyed() {
		vp := g.engine.Viewport()
		if vp.Width != float64(outsideWidth) || vp.Height != float64(outsideHeight) {
			vp.Width, vp.Height = float64(outsideWidth), float64(outsideHeight)
			if err := g.engine.SetViewport(vp); err != nil {
				Logger().Warn("layout", "err", err)
			}
		}
	}
	g.renderer.resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// captureNRGBA reads the screen and converts premultiplied RGBA to
// straight-alpha NRGBA.
func captureNRGBA(screen *ebiten.Image) *image.NRGBA {
	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pixels); i += 4 {
		r, gr, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			gr = uint8(min(int(gr)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = gr
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// Run opens a window and drives e with ebiten until the window closes or
// the engine is destroyed.
func Run(e *Engine, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		vp := e.Viewport()
		cfg.Width, cfg.Height = int(vp.Width), int(vp.Height)
	}
	r, ok := e.renderer.(*EbitenRenderer)
	if !ok {
		return fmt.Errorf("run: engine renderer is %T, want *EbitenRenderer: %w", e.renderer, ErrInvalidArgument)
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(NewGame(e, r, cfg))
}
