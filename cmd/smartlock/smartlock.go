package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/danielbahrami/SE08-SP/buzzer"
	"github.com/danielbahrami/SE08-SP/common"
	"github.com/danielbahrami/SE08-SP/dda"
	"github.com/danielbahrami/SE08-SP/fsm"
	"github.com/danielbahrami/SE08-SP/httpapi"
	"github.com/danielbahrami/SE08-SP/indicator"
	"github.com/danielbahrami/SE08-SP/lock"
	"github.com/danielbahrami/SE08-SP/mqtt"
	"github.com/danielbahrami/SE08-SP/network"
	"github.com/danielbahrami/SE08-SP/telemetry"
	"github.com/danielbahrami/SE08-SP/tracing"
	"go.opentelemetry.io/otel"
)

type transport interface {
	Open(ctx context.Context) error
	Close()
	PublishHeartbeat(ctx context.Context, payload []byte) error
	SubscribeToCommands(ctx context.Context) (<-chan string, error)
}

func main() {
	log.Println("starting smartlock")

	cfg, err := common.LoadConfig(".env")
	if err != nil {
		log.Fatalln(err)
	}

	flag.StringVar(&cfg.Transport, "transport", cfg.Transport, "command transport, mqtt or dda")
	flag.StringVar(&cfg.Mqtt.Broker, "url", cfg.Mqtt.Broker, "mqtt url")
	flag.StringVar(&cfg.Mqtt.ClientId, "id", cfg.Mqtt.ClientId, "client id")
	flag.StringVar(&cfg.Dda.Url, "dda", cfg.Dda.Url, "dda url")
	flag.StringVar(&cfg.Lock.Mode, "mode", cfg.Lock.Mode, "lock mode, simulated or inline")
	flag.StringVar(&cfg.Lock.Table, "table", cfg.Lock.Table, "transition table file")
	flag.StringVar(&cfg.Indicator.Output, "output", cfg.Indicator.Output, "indicator output, log, terminal or none")
	flag.StringVar(&cfg.Http.Addr, "http", cfg.Http.Addr, "http listen address")
	flag.StringVar(&cfg.Trace.Exporter, "trace", cfg.Trace.Exporter, "trace exporter, none or stdout")
	flag.Parse()

	tracerProvider, err := tracing.NewProvider(cfg.Trace, os.Stdout)
	if err != nil {
		log.Fatalln(err)
	}
	if tracerProvider != nil {
		otel.SetTracerProvider(tracerProvider)
	}

	mode, err := lock.ParseMode(cfg.Lock.Mode)
	if err != nil {
		log.Fatalln(err)
	}

	var table *fsm.Table
	if cfg.Lock.Table != "" {
		table, err = fsm.LoadTableFile(cfg.Lock.Table)
	} else {
		table, err = fsm.Profile(string(mode))
	}
	if err != nil {
		log.Fatalln(err)
	}

	smartLock, err := lock.New(table, lock.Config{
		Mode:           mode,
		PollPeriod:     cfg.Lock.PollPeriod(),
		TracerProvider: otel.GetTracerProvider(),
	})
	if err != nil {
		log.Fatalln(err)
	}

	var conn transport
	var terminal *indicator.TerminalOutput
	var chime *buzzer.Buzzer
	var publisher *telemetry.Publisher
	var quit <-chan struct{}

	ctx, cancel := context.WithCancel(context.Background())

	defer func() {
		log.Println("shutting down")

		if publisher != nil {
			publisher.Stop()
		}
		cancel()
		<-smartLock.Done()
		smartLock.Wait()

		if conn != nil {
			conn.Close()
		}
		if chime != nil {
			chime.Close()
		}
		if terminal != nil {
			terminal.Close()
		}
		if tracerProvider != nil {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				log.Printf("tracing - %s", err)
			}
		}
	}()

	var output indicator.Output
	switch cfg.Indicator.Output {
	case "terminal":
		if terminal, err = indicator.NewTerminalOutput(cfg.Indicator.Inverted); err != nil {
			log.Fatalln(err)
		}
		output = terminal
		quit = terminal.Quit()
	case "none":
		output = indicator.NoneOutput{}
	default:
		output = &indicator.LogOutput{}
	}

	rendererOpts := []indicator.Option{
		indicator.WithPeriod(cfg.Indicator.Period()),
		indicator.WithInverted(cfg.Indicator.Inverted),
	}
	if cfg.Buzzer.Enabled {
		if chime, err = buzzer.New(); err != nil {
			log.Printf("buzzer - disabled: %s", err)
		} else {
			rendererOpts = append(rendererOpts, indicator.WithChime(chime))
		}
	}

	go indicator.NewRenderer(smartLock, output, rendererOpts...).Run(ctx)
	go smartLock.Run(ctx)

	if cfg.Http.Addr != "" {
		server := httpapi.NewServer(cfg.Http.Addr, smartLock)
		go func() {
			if err := server.Run(ctx); err != nil {
				log.Printf("httpapi - %s", err)
			}
		}()
	}

	switch cfg.Transport {
	case "dda":
		conn, err = dda.NewConnector(cfg.Dda, cfg.Mqtt.ClientId)
	default:
		conn, err = mqtt.NewConnector(cfg.Mqtt)
	}
	if err != nil {
		log.Fatalln(err)
	}

	bootstrapCtx, bootstrapCancel := context.WithTimeout(ctx, 30*time.Second)
	err = smartLock.Bootstrap(bootstrapCtx, network.NewInterfaceLink(cfg.Network), conn)
	bootstrapCancel()

	if err != nil {
		// the indicator keeps blinking until the operator stops the device
		log.Printf("smartlock - bootstrap failed: %s", err)
	} else {
		commands, err := conn.SubscribeToCommands(ctx)
		if err != nil {
			log.Fatalln(err)
		}
		go smartLock.Consume(ctx, commands)

		publisher = telemetry.NewPublisher(smartLock, conn, cfg.Mqtt.HeartbeatFrequency())
		publisher.Start(ctx)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	select {
	case <-sigChan:
	case <-quit:
	}
}
