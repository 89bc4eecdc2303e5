// Command stroke-report replays a recorded landmark session through the
// stroke analysis pipeline, persists the resulting stroke events, and
// serves the monitoring HTTP interface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/courtside-data/stroke.report/internal/config"
	"github.com/courtside-data/stroke.report/internal/monitor"
	"github.com/courtside-data/stroke.report/internal/session"
	sqlitestore "github.com/courtside-data/stroke.report/internal/storage/sqlite"
	"github.com/courtside-data/stroke.report/internal/swing"
	"github.com/courtside-data/stroke.report/internal/version"
)

var (
	sessionFile = flag.String("session", "", "JSONL landmark session to replay")
	dbFile      = flag.String("db", "strokes.db", "sqlite database path")
	tuningFile  = flag.String("config", "", "tuning config JSON (optional)")
	refsFile    = flag.String("references", "", "reference table JSON (optional)")
	listen      = flag.String("listen", ":8080", "listen address for the monitor server")
	plotsDir    = flag.String("plots", "", "directory for post-run plots (optional)")
	calibOut    = flag.String("calibration-out", "", "write a recalibrated reference table here after replay (optional)")
	realtime    = flag.Bool("realtime", false, "pace replay by recorded timestamps")
	serve       = flag.Bool("serve", false, "keep the monitor server running after replay")
	showVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("stroke-report", version.String())
		return
	}

	// Subcommands run before the long-lived server path.
	if args := flag.Args(); len(args) > 0 && args[0] == "migrate" {
		runMigrateCommand(args[1:], *dbFile)
		return
	}

	tuning, err := loadTuning(*tuningFile)
	if err != nil {
		log.Fatalf("failed to load tuning config: %v", err)
	}
	refs, err := loadReferences(*refsFile)
	if err != nil {
		log.Fatalf("failed to load reference table: %v", err)
	}

	db, err := sqlitestore.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	sessionID := uuid.NewString()
	store, err := sqlitestore.NewStrokeStore(db, sessionID,
		tuning.GetDominantHand(), tuning.GetSkillTier())
	if err != nil {
		log.Fatalf("failed to create stroke store: %v", err)
	}

	feed := monitor.NewFeed()
	sinks := []swing.StrokeSink{store, feed}
	var plotter *monitor.StrokePlotter
	if *plotsDir != "" {
		plotter = monitor.NewStrokePlotter()
		sinks = append(sinks, plotter)
	}
	var calibrator *config.Calibrator
	if *calibOut != "" {
		calibrator = config.NewCalibrator()
		sinks = append(sinks, calibratorSink{calibrator})
	}

	pipeline := swing.NewPipeline(swing.PipelineConfig{
		Tuning:      tuning,
		References:  refs,
		SessionID:   sessionID,
		Sinks:       sinks,
		Rejects:     store,
		Calibration: store,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address: *listen,
		DB:      db,
		Status:  pipeline,
		Feed:    feed,
	})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ws.Start(serverCtx); err != nil {
			log.Printf("monitor server error: %v", err)
		}
	}()

	if *sessionFile != "" {
		runReplay(ctx, pipeline, store)
	} else if !*serve {
		log.Println("no -session given; running monitor server only (ctrl-c to stop)")
	}

	// Flush in-flight sink deliveries before reading their outputs.
	pipeline.Close()

	if plotter != nil {
		if err := plotter.Flush(*plotsDir); err != nil {
			log.Printf("failed to write plots: %v", err)
		}
	}
	if calibrator != nil {
		if table := calibrator.DeriveTable(); len(table) > 0 {
			if err := config.SaveReferenceTable(*calibOut, table); err != nil {
				log.Printf("failed to write calibration: %v", err)
			} else {
				log.Printf("wrote recalibrated reference table to %s", *calibOut)
			}
		} else {
			log.Println("not enough strokes per type to recalibrate; skipping calibration output")
		}
	}

	if *sessionFile != "" && !*serve {
		stopServer()
	}
	wg.Wait()
	log.Println("shutdown complete")
}

// calibratorSink feeds stroke kinematics into the session calibrator.
type calibratorSink struct {
	cal *config.Calibrator
}

func (s calibratorSink) HandleStroke(ev *swing.StrokeEvent) error {
	s.cal.Observe(string(ev.Type), ev.Velocity, ev.Acceleration, ev.Rotation)
	return nil
}

func runReplay(ctx context.Context, pipeline *swing.Pipeline, store *sqlitestore.StrokeStore) {
	f, err := os.Open(*sessionFile)
	if err != nil {
		log.Fatalf("failed to open session file: %v", err)
	}
	defer f.Close()

	rp := session.NewReplayer(pipeline, nil, *realtime)
	stats, err := rp.Replay(ctx, f)
	if err != nil && err != context.Canceled {
		log.Printf("replay aborted: %v", err)
	}
	if view := pipeline.CameraView(); view.View != "" {
		if err := store.SetCameraView(string(view.View)); err != nil {
			log.Printf("failed to record camera view: %v", err)
		}
	}
	log.Printf("replay done: %d frames, %d skipped, %d strokes (session %s)",
		stats.Frames, stats.Skipped, stats.Strokes, pipeline.SessionID())
}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.EmptyTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

func loadReferences(path string) (config.ReferenceTable, error) {
	if path == "" {
		return config.DefaultReferenceTable(), nil
	}
	return config.LoadReferenceTable(path)
}
