package main

import (
	"fmt"
	"image/color"
	"math/rand/v2"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/physlayout/common"
	"github.com/milk9111/physlayout/config"
	"github.com/milk9111/physlayout/input"
	"github.com/milk9111/physlayout/physics"
	"github.com/milk9111/physlayout/render"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
)

const (
	baseWidth  = common.BaseWidth
	baseHeight = common.BaseHeight

	containerMargin = 60
)

var (
	backgroundColor = color.RGBA{R: 0x1e, G: 0x1f, B: 0x26, A: 0xff}
	containerColor  = color.RGBA{R: 0x2b, G: 0x2d, B: 0x38, A: 0xff}
)

type Game struct {
	frames int

	cfg       config.Config
	log       *zap.Logger
	rng       *rand.Rand
	container physics.Rect
	watcher   *config.Watcher

	scene    *scene
	poller   *input.Poller
	queue    input.Queue
	router   *input.Router
	renderer *render.Renderer
	sprites  []render.Sprite

	pauseUI   *ebitenui.UI
	paused    bool
	quit      bool
	clipboard bool
	status    string
}

func NewGame(cfg config.Config, logger *zap.Logger, watcher *config.Watcher) (*Game, error) {
	container := physics.Rect{
		X:      containerMargin,
		Y:      containerMargin,
		Width:  baseWidth - 2*containerMargin,
		Height: baseHeight - 2*containerMargin,
	}

	g := &Game{
		cfg:       cfg,
		log:       logger,
		rng:       cfg.Rand(),
		container: container,
		watcher:   watcher,
		poller:    input.NewPoller(container),
		renderer:  render.NewRenderer(),
	}
	g.pauseUI = render.NewPauseMenu("Paused", baseWidth, baseHeight,
		render.MenuAction{Label: "Resume", OnClick: func() { g.setPaused(false) }},
		render.MenuAction{Label: "Reshuffle", OnClick: func() {
			g.setPaused(false)
			g.reshuffle()
		}},
		render.MenuAction{Label: "Copy layout", OnClick: g.copyLayout},
		render.MenuAction{Label: "Quit", OnClick: func() { g.quit = true }},
	)

	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable", zap.Error(err))
	} else {
		g.clipboard = true
	}

	if err := g.restart(); err != nil {
		return nil, err
	}
	return g, nil
}

// restart replaces the running scene with a fresh one built from g.cfg.
func (g *Game) restart() error {
	if err := g.scene.close(); err != nil {
		g.log.Error("closing scene", zap.Error(err))
	}
	g.scene = nil

	sc, err := startScene(g.cfg, g.container, g.rng, g.log)
	if err != nil {
		return err
	}
	g.scene = sc
	g.router = input.NewRouter(sc.session.Input())
	g.status = fmt.Sprintf("set %q: %d elements", sc.set, len(sc.boxes))
	return nil
}

func (g *Game) reshuffle() {
	if err := g.restart(); err != nil {
		g.log.Error("reshuffle failed", zap.Error(err))
		g.status = err.Error()
	}
}

func (g *Game) setPaused(paused bool) {
	g.paused = paused
	if g.scene != nil {
		g.scene.session.SetPaused(paused)
	}
}

func (g *Game) copyLayout() {
	if g.scene == nil {
		return
	}
	layout, err := g.scene.session.Snapshot()
	if err == nil {
		var data []byte
		data, err = layout.YAML()
		if err == nil && g.clipboard {
			clipboard.Write(clipboard.FmtText, data)
			g.status = fmt.Sprintf("copied %d poses", len(layout.Poses))
			return
		}
	}
	if err != nil {
		g.log.Warn("copy layout", zap.Error(err))
		g.status = err.Error()
		return
	}
	g.status = "clipboard unavailable"
}

// pollWatcher applies a reloaded config without blocking the frame.
func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	select {
	case cfg, ok := <-g.watcher.Updates:
		if !ok {
			g.watcher = nil
			return
		}
		g.log.Info("config changed, restarting", zap.Uint64("fingerprint", cfg.Fingerprint()))
		prev := g.cfg
		g.cfg = cfg
		if err := g.restart(); err != nil {
			g.log.Error("restart with new config", zap.Error(err))
			g.cfg = prev
			g.reshuffle()
		}
	case err, ok := <-g.watcher.Errors:
		if ok {
			g.log.Warn("config reload", zap.Error(err))
			g.status = err.Error()
		}
	default:
	}
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	g.frames++

	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.setPaused(!g.paused)
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.reshuffle()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copyLayout()
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.cfg.Debug = !g.cfg.Debug
	}

	if g.scene == nil {
		return nil
	}
	g.poller.Poll(&g.queue)
	g.router.DispatchAll(g.queue.Drain())

	if err := g.scene.session.Frame(); err != nil {
		g.log.Error("frame", zap.Error(err))
		return err
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	c := g.container
	ebitenutil.DrawRect(screen, c.X, c.Y, c.Width, c.Height, containerColor)

	if g.scene != nil {
		g.sprites = g.scene.sprites(g.sprites[:0])
		g.renderer.Draw(screen, g.sprites, c.X, c.Y)
		if g.cfg.Debug {
			render.DrawDebug(screen, g.scene.session.Engine(), c.X, c.Y)
		}
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f", g.frames, ebiten.ActualFPS()))
	g.renderer.Text(screen, g.status+"    [R] reshuffle  [C] copy  [D] debug  [Esc] menu", 8, baseHeight-22)

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

// Close ends the running scene.
func (g *Game) Close() {
	if err := g.scene.close(); err != nil {
		g.log.Error("closing scene", zap.Error(err))
	}
	g.scene = nil
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
