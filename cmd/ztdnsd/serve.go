package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ztdns/overlay/internal/dot"
	"github.com/ztdns/overlay/internal/metrics"
	"github.com/ztdns/overlay/internal/pki"
	"github.com/ztdns/overlay/internal/proxy"
	"github.com/ztdns/overlay/internal/registry"
	"github.com/ztdns/overlay/internal/zlog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the registry, DoT resolver and routing proxy (default command)",
	RunE:  runServe,
}

// wireLogging backs each package's Logger hook variables with a shared
// zap.Logger.
func wireLogging(logger *zap.Logger) {
	registry.Debug = zlog.Func(logger, "registry", "debug")
	registry.Info = zlog.Func(logger, "registry", "info")
	registry.Warn = zlog.Func(logger, "registry", "warn")

	dot.Query = zlog.Func(logger, "dot", "debug")
	dot.Debug = zlog.Func(logger, "dot", "debug")
	dot.Info = zlog.Func(logger, "dot", "info")
	dot.Warn = zlog.Func(logger, "dot", "warn")

	proxy.Debug = zlog.Func(logger, "proxy", "debug")
	proxy.Info = zlog.Func(logger, "proxy", "info")
	proxy.Warn = zlog.Func(logger, "proxy", "warn")
}

func runServe(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("fatal: %w", err)
	}

	logger, err := zlog.New(conf.Log.Development)
	if err != nil {
		return fmt.Errorf("fatal: building logger: %w", err)
	}
	defer logger.Sync()
	wireLogging(logger)

	reg, err := registry.New(registry.Paths{
		Endpoints: conf.Registry.EndpointsFile,
		Zones:     conf.Registry.ZonesFile,
		Routes:    conf.Registry.RoutesFile,
	})
	if err != nil {
		return fmt.Errorf("fatal: loading registry: %w", err)
	}

	tlsConfig, err := pki.BuildServerTLSConfig(pki.ServerConfig{
		CertFile: conf.TLS.CertFile,
		KeyFile:  conf.TLS.KeyFile,
		CAFile:   conf.TLS.CAFile,
	})
	if err != nil {
		return fmt.Errorf("fatal: building tls config: %w", err)
	}

	met := metrics.New()

	dotServer := &dot.Server{
		Registry:        reg,
		TLSConfig:       tlsConfig.Clone(),
		Upstream:        dot.NewUpstream(conf.DoT.DoHUpstreamURL, dot.DefaultDoHTimeout),
		ProxyPublicIPv4: conf.DoT.ProxyPublicIPv4,
		Metrics:         met,
	}

	proxyServer := &proxy.Server{
		Registry:  reg,
		TLSConfig: tlsConfig.Clone(),
		Metrics:   met,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received, draining connections")
		cancel()
	}()

	var wg sync.WaitGroup
	runAndLog := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				logger.Error("component exited", zap.String("component", name), zap.Error(err))
			}
		}()
	}

	runAndLog("registry-watch", func() error { return reg.Watch(ctx) })
	runAndLog("dot", func() error { return dotServer.ListenAndServe(ctx, conf.DoT.ListenAddr) })
	runAndLog("proxy", func() error { return proxyServer.ListenAndServe(ctx, conf.Proxy.ListenAddr) })

	if conf.Metrics.ListenAddr != "" {
		metricsSrv := &http.Server{Addr: conf.Metrics.ListenAddr, Handler: metricsMux(met)}
		runAndLog("metrics", metricsSrv.ListenAndServe)
		go func() {
			<-ctx.Done()
			_ = metricsSrv.Close()
		}()
	}

	wg.Wait()
	return nil
}

func metricsMux(m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}
