package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/golang/glog"
	"github.com/redis/go-redis/v9"
)

const PixfloodVersion = "0.1.0"

func main() {
	usage := fmt.Sprintf(`Pixel flood client.

Streams an image to a pixel canvas server over many TCP connections, writing
only the pixels whose server color differs from the image.

Usage:
    pixflood sync --host=<host> --image=<path> [options]
    pixflood serve --host=<host> --image=<path> --listen=<addr> [options]
    pixflood token [--ttl=<ttl>]

Options:
    -h --help                    Show this screen.
    --version                    Show version.
    --host=<host>                Canvas server host.
    -p --port=<port>             Canvas server port [default: %d].
    --image=<path>               Image to draw, stretched over the canvas.
    -n --connections=<n>         Connections in the pool [default: %d].
    --row_delay=<d>              Minimum gap between scan lines per connection [default: %s].
    --dial_timeout=<d>           Connect timeout [default: %s].
    --io_timeout=<d>             Timeout per send and per receive [default: %s].
    --palette=<colors>           Comma separated hex colors to quantize the image to.
    --redis=<addr>               Publish progress events to redis at this address.
    --listen=<addr>              Serve the status API and progress websocket on this address.
    --ttl=<ttl>                  Control token lifetime [default: 24h].
    -v --verbose                 Log every scan line.`,
		DefaultPort,
		DefaultConnections,
		DefaultRowDelay,
		DefaultDialTimeout,
		DefaultIOTimeout,
	)

	opts, err := docopt.ParseArgs(usage, os.Args[1:], PixfloodVersion)
	if err != nil {
		panic(err)
	}

	initGlog(opts)
	defer glog.Flush()

	if sync_, _ := opts.Bool("sync"); sync_ {
		err = runSync(opts)
	} else if serve_, _ := opts.Bool("serve"); serve_ {
		err = runServe(opts)
	} else if token_, _ := opts.Bool("token"); token_ {
		err = printToken(opts)
	}
	if err != nil {
		glog.Errorf("%v\n", err)
		glog.Flush()
		os.Exit(1)
	}
}

func initGlog(opts docopt.Opts) {
	flag.Set("logtostderr", "true")
	flag.Set("stderrthreshold", "INFO")
	if verbose, _ := opts.Bool("--verbose"); verbose {
		flag.Set("v", "2")
	} else {
		flag.Set("v", "0")
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// setup wires the orchestrator with every configured event sink. The returned
// cleanup releases the sinks.
func setup(ctx context.Context, cfg Config) (*Manager, func(), error) {
	manager := NewManager(ctx)
	sinks := MultiSink{manager}
	cleanup := func() {}

	if cfg.RedisAddr != "" {
		publisher, err := NewRedisPublisher(ctx, &redis.Options{Addr: cfg.RedisAddr})
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis: %w", err)
		}
		sinks = append(sinks, publisher)
		cleanup = func() { publisher.Close() }
	}

	dialer := &TCPDialer{Addr: cfg.Addr(), DialTimeout: cfg.DialTimeout, IOTimeout: cfg.IOTimeout}
	source := &FileImageSource{Path: cfg.ImagePath, Palette: cfg.Palette}
	orchestrator := NewOrchestrator(cfg, dialer, source, sinks)
	manager.Attach(orchestrator)

	return manager, cleanup, nil
}

func listen(addr string, manager *Manager) *http.Server {
	server := &http.Server{Addr: addr, Handler: manager.Router()}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Errorf("status server stopped: %v\n", err)
		}
	}()
	glog.Infof("status api on %s\n", addr)
	return server
}

func shutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

func runSync(opts docopt.Opts) error {
	cfg, err := ConfigFromOpts(opts)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	manager, cleanup, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Listen != "" {
		server := listen(cfg.Listen, manager)
		defer shutdown(server)
	}

	summary, err := manager.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Printf("run %s cancelled: %d/%d segments completed, %d written\n",
			summary.RunId, summary.Completed, summary.Connections, summary.Written)
		return err
	}
	if err != nil {
		return err
	}
	fmt.Printf("run %s: %d/%d segments completed, %d written, %d skipped, %d malformed replies, %s\n",
		summary.RunId, summary.Completed, summary.Connections, summary.Written, summary.Skipped, summary.Malformed, summary.Duration)
	return nil
}

func runServe(opts docopt.Opts) error {
	cfg, err := ConfigFromOpts(opts)
	if err != nil {
		return err
	}
	if _, err := jwtSecret(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	manager, cleanup, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	server := listen(cfg.Listen, manager)
	<-ctx.Done()
	glog.Infof("shutting down\n")
	shutdown(server)
	manager.Wait()
	return nil
}

func printToken(opts docopt.Opts) error {
	secretKey, err := jwtSecret()
	if err != nil {
		return err
	}
	ttl := 24 * time.Hour
	if s, _ := opts.String("--ttl"); s != "" {
		if ttl, err = time.ParseDuration(s); err != nil {
			return configError("ttl %q: %v", s, err)
		}
	}
	token, err := createToken(secretKey, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
