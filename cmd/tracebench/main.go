package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/enginetrace/collide"
	"github.com/oomph-ac/enginetrace/engine"
	"github.com/oomph-ac/enginetrace/game"
	"github.com/oomph-ac/enginetrace/occlusion"
	"github.com/oomph-ac/enginetrace/settings"
	"github.com/oomph-ac/enginetrace/trace"
	"github.com/oomph-ac/enginetrace/world"
	"github.com/sirupsen/logrus"
)

const settingsPath = "enginetrace.toml"

// The following program builds a small level, runs a batch of traces and occlusion
// queries through it and logs the statistics.
func main() {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true}
	log.Level = logrus.DebugLevel

	conf := readSettings(log)

	if addr := os.Getenv("STATSVIEW_ADDR"); addr != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(addr))

		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	w, bodies, err := buildLevel(log)
	if err != nil {
		log.Fatalf("unable to build level: %v", err)
	}

	e := engine.New(w, bodies, collide.Name("world"), conf.Trace, log)
	e.Recorder().Enable(true)
	runTraces(e, log)
	e.Recorder().Dump()

	cache := occlusion.NewCache(w, conf.Occlusion, nil, log)
	defer cache.Close()
	runOcclusion(cache, log)
	cache.Stats().Dump(log, false)
}

func readSettings(log *logrus.Logger) settings.Settings {
	if err := settings.SaveDefault(settingsPath); err != nil {
		log.Debugf("not writing default settings: %v", err)
	}
	conf, err := settings.Load(settingsPath)
	if err != nil {
		log.Warnf("using default settings: %v", err)
		return settings.DefaultSettings()
	}
	return conf
}

// buildLevel creates a walled floor with a pillar in the middle, a door sub-model and
// a handful of crates.
func buildLevel(log *logrus.Logger) (*world.World, *world.Index, error) {
	w, err := world.New(cube.Box(-1024, -1024, -256, 1024, 1024, 1024), 256, log)
	if err != nil {
		return nil, nil, err
	}
	brushes := []struct {
		bb       cube.BBox
		contents trace.Contents
	}{
		{cube.Box(-1024, -1024, -256, 1024, 1024, 0), trace.ContentsSolid},
		{cube.Box(-1024, -1024, 0, -992, 1024, 256), trace.ContentsSolid | trace.ContentsOpaque},
		{cube.Box(992, -1024, 0, 1024, 1024, 256), trace.ContentsSolid | trace.ContentsOpaque},
		{cube.Box(-64, -64, 0, 64, 64, 512), trace.ContentsSolid | trace.ContentsOpaque},
		{cube.Box(-512, 256, 0, 512, 288, 16), trace.ContentsWater},
	}
	for _, b := range brushes {
		if _, err := w.AddBrush(0, b.bb, b.contents); err != nil {
			return nil, nil, err
		}
	}
	w.SetSky(cube.Box(-1024, -1024, 256, 1024, 1024, 1024))

	door := w.AddModel()
	if _, err := w.AddBrush(door, cube.Box(-32, -4, 0, 32, 4, 128), trace.ContentsSolid); err != nil {
		return nil, nil, err
	}

	bodies := world.NewIndex(world.DefaultCellSize)
	bodies.Insert(&collide.Descriptor{
		Kind:   collide.SolidBSP,
		Pos:    mgl32.Vec3{300, 0, 0},
		Bounds: cube.Box(-32, -4, 0, 32, 4, 128),
		Owner:  collide.Name("door"),
		Repr:   collide.BrushModel(door, nil),
	})
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 16; i++ {
		pos := mgl32.Vec3{r.Float32()*1600 - 800, r.Float32()*1600 - 800, 0}
		bodies.Insert(&collide.Descriptor{
			Kind:   collide.SolidBBox,
			Pos:    pos,
			Bounds: cube.Box(-16, -16, 0, 16, 16, 32),
			Owner:  collide.Name(fmt.Sprintf("crate_%d", i)),
		})
	}
	bodies.Insert(&collide.Prop{
		Descriptor: collide.Descriptor{
			Kind:   collide.SolidBBox,
			Pos:    mgl32.Vec3{-300, -300, 0},
			Bounds: cube.Box(-24, -24, 0, 24, 24, 96),
			Owner:  collide.Name("barrel"),
		},
		Index: 0,
	})
	return w, bodies, nil
}

func runTraces(e *engine.Engine, log *logrus.Logger) {
	r := rand.New(rand.NewPCG(3, 4))
	start := time.Now()
	var hits int
	timings := make([]float64, 0, 10000)
	for i := 0; i < 10000; i++ {
		from := mgl32.Vec3{r.Float32()*1800 - 900, r.Float32()*1800 - 900, 64}
		to := mgl32.Vec3{r.Float32()*1800 - 900, r.Float32()*1800 - 900, r.Float32() * 128}
		var s trace.Shape
		if i%2 == 0 {
			s = trace.NewRay(from, to)
		} else {
			s = trace.NewBox(from, to, mgl32.Vec3{-16, -16, 0}, mgl32.Vec3{16, 16, 72})
		}
		traceStart := time.Now()
		if res := e.TraceShape(s, trace.MaskPlayerSolid, nil); res.DidHit() {
			hits++
		}
		timings = append(timings, float64(time.Since(traceStart).Nanoseconds())/1e3)
	}
	log.Infof("traced %d shapes (%d hits) in %v", e.GetStat(engine.StatTraceRay, true), hits, time.Since(start))
	log.WithFields(logrus.Fields{
		"mean":     game.Mean(timings),
		"median":   game.Median(timings),
		"stddev":   game.StandardDeviation(timings),
		"outliers": game.Outliers(timings),
	}).Info("trace timings (µs)")

	list := e.BuildList(cube.Box(-200, -200, 0, 200, 200, 128))
	defer list.Release()
	for i := 0; i < 1000; i++ {
		from := mgl32.Vec3{r.Float32()*300 - 150, r.Float32()*300 - 150, 64}
		e.ClipAlongCachedList(trace.NewRay(from, from.Sub(mgl32.Vec3{0, 0, 64})), list, trace.MaskSolid, nil)
	}
	log.Infof("traced %d shapes against a cached list of %d leaves and %d bodies",
		e.GetStat(engine.StatTraceRay, true), len(list.Leaves), len(list.Bodies)+len(list.Props))

	// A player hull walking across the room, with a step traced down at every stop.
	mins, maxs := mgl32.Vec3{-16, -16, 0}, mgl32.Vec3{16, 16, 72}
	walkFrom, walkTo := mgl32.Vec3{-400, -200, 18}, mgl32.Vec3{400, -200, 18}
	walk := e.BuildListForSegment(walkFrom, walkTo.Sub(mgl32.Vec3{0, 0, 18}), mins, maxs)
	defer walk.Release()
	var grounded int
	for i := 0; i <= 32; i++ {
		pos := game.VecMA(walkFrom, float32(i)/32, walkTo.Sub(walkFrom))
		step := trace.NewBox(pos, pos.Sub(mgl32.Vec3{0, 0, 18}), mins, maxs)
		if res := e.ClipAlongCachedList(step, walk, trace.MaskPlayerSolid, nil); res.DidHit() {
			grounded++
		}
	}
	log.Infof("walked %d steps, %d of them on ground", e.GetStat(engine.StatTraceRay, true), grounded)

	contents, owner := e.PointContents(mgl32.Vec3{0, 272, 8}, trace.MaskAll)
	log.Infof("contents at the pool: %#x (%s)", uint32(contents), owner.DebugName())
}

func runOcclusion(cache *occlusion.Cache, log *logrus.Logger) {
	r := rand.New(rand.NewPCG(5, 6))
	players := make([]mgl32.Vec3, 8)
	for i := range players {
		players[i] = mgl32.Vec3{r.Float32()*1600 - 800, r.Float32()*1600 - 800, 0}
	}
	shadow := mgl32.Vec3{-200, 100, -400}

	var occluded int
	for tick := 0; tick < 64; tick++ {
		cache.Suspend()
		for i := range players {
			players[i] = players[i].Add(mgl32.Vec3{r.Float32()*4 - 2, r.Float32()*4 - 2, 0})
		}
		for i, a := range players {
			for j, b := range players {
				if i == j {
					continue
				}
				if cache.IsOccluded(i*len(players)+j, playerBox(a), playerBox(b), shadow) {
					occluded++
				}
			}
		}
		cache.Resume()
		time.Sleep(time.Millisecond * 5)
	}
	log.Infof("%d occluded pairs", occluded)
}

func playerBox(pos mgl32.Vec3) cube.BBox {
	return cube.Box(pos[0]-16, pos[1]-16, pos[2], pos[0]+16, pos[1]+16, pos[2]+72)
}
