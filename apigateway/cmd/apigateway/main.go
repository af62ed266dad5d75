package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	consulsd "github.com/go-kit/kit/sd/consul"
	"github.com/google/uuid"
	"github.com/hashicorp/consul/api"
	"github.com/ichigozero/tasktracker/apigateway"
	"github.com/ichigozero/tasktracker/authsvc/pkg/authservice"
	"github.com/ichigozero/tasktracker/envelope"
	"github.com/ichigozero/tasktracker/tasksvc"
	taskgorm "github.com/ichigozero/tasktracker/tasksvc/db/gorm"
	taskclient "github.com/ichigozero/tasktracker/tasksvc/client"
	"github.com/ichigozero/tasktracker/tasksvc/pkg/taskendpoint"
	"github.com/ichigozero/tasktracker/tasksvc/pkg/taskservice"
	"github.com/ichigozero/tasktracker/usersvc"
	usergorm "github.com/ichigozero/tasktracker/usersvc/db/gorm"
	"github.com/ichigozero/tasktracker/usersvc/pkg/userendpoint"
	"github.com/ichigozero/tasktracker/usersvc/pkg/userservice"
	"github.com/oklog/oklog/pkg/group"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	libgorm "gorm.io/gorm"
)

func main() {
	fs := flag.NewFlagSet("apigateway", flag.ExitOnError)
	var (
		httpAddr = fs.String(
			"http.addr",
			getEnv("HTTP_ADDR", ":3000"),
			"HTTP listen address",
		)
		databaseURL = fs.String(
			"database.url",
			getEnv("DATABASE_URL", ""),
			"Postgres URL; sqlite is used when empty",
		)
		sqlitePath = fs.String(
			"sqlite.path",
			getEnv("SQLITE_PATH", "tasks.db"),
			"sqlite database file",
		)
		appEnv = fs.String(
			"app.env",
			getEnv("APP_ENV", "production"),
			"production or development",
		)
		consulAddr = fs.String(
			"consul.addr",
			getEnv("CONSUL_ADDR", ""),
			"Consul agent address; registration is skipped when empty",
		)
	)

	fs.Usage = usageFor(fs, os.Args[0]+" [flags]")
	fs.Parse(os.Args[1:])

	var logger log.Logger
	{
		logger = log.NewLogfmtLogger(os.Stderr)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	var db *libgorm.DB
	{
		var dialector libgorm.Dialector
		if *databaseURL != "" {
			dialector = postgres.Open(*databaseURL)
		} else {
			dialector = sqlite.Open(*sqlitePath + "?_foreign_keys=on")
		}

		var err error
		db, err = libgorm.Open(dialector, &libgorm.Config{})
		if err != nil {
			level.Error(logger).Log("during", "Open", "err", err)
			os.Exit(1)
		}
		if err := db.AutoMigrate(&usersvc.User{}, &tasksvc.Task{}); err != nil {
			level.Error(logger).Log("during", "AutoMigrate", "err", err)
			os.Exit(1)
		}
	}

	fieldKeys := []string{"method"}

	var users userservice.Service
	{
		users = userservice.New(usergorm.NewUserRepository(db), log.With(logger, "service", "users"))
		users = userservice.InstrumentingMiddleware(
			kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
				Namespace: "api",
				Subsystem: "user_service",
				Name:      "request_count",
				Help:      "Number of requests received.",
			}, fieldKeys),
			kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
				Namespace: "api",
				Subsystem: "user_service",
				Name:      "request_latency_seconds",
				Help:      "Total duration of requests in seconds.",
			}, fieldKeys),
		)(users)
	}

	var tasks taskservice.Service
	{
		tasks = taskservice.New(taskgorm.NewTaskRepository(db), log.With(logger, "service", "tasks"))
		tasks = taskservice.InstrumentingMiddleware(
			kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
				Namespace: "api",
				Subsystem: "task_service",
				Name:      "request_count",
				Help:      "Number of requests received.",
			}, fieldKeys),
			kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
				Namespace: "api",
				Subsystem: "task_service",
				Name:      "request_latency_seconds",
				Help:      "Total duration of requests in seconds.",
			}, fieldKeys),
		)(tasks)
	}

	var (
		userEndpoints = userendpoint.New(users, logger)
		taskEndpoints = taskendpoint.New(tasks, logger)
		auth          = authservice.New(userEndpoints, log.With(logger, "service", "auth"))
		enc           = envelope.Encoder{Development: *appEnv == "development"}
		httpHandler   = apigateway.NewHTTPHandler(userEndpoints, taskEndpoints, auth, enc, level.Error(logger))
	)

	if *consulAddr != "" {
		registrar, err := newRegistrar(*consulAddr, *httpAddr, logger)
		if err != nil {
			level.Error(logger).Log("during", "Register", "err", err)
			os.Exit(1)
		}
		registrar.Register()
		defer registrar.Deregister()
	}

	var g group.Group
	{
		httpListener, err := net.Listen("tcp", *httpAddr)
		if err != nil {
			level.Error(logger).Log("transport", "HTTP", "during", "Listen", "err", err)
			os.Exit(1)
		}
		g.Add(func() error {
			level.Info(logger).Log("transport", "HTTP", "addr", *httpAddr, "env", *appEnv)
			return http.Serve(httpListener, httpHandler)
		}, func(error) {
			httpListener.Close()
		})
	}
	{
		// This function just sits and waits for ctrl-C.
		cancelInterrupt := make(chan struct{})
		g.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-c:
				return fmt.Errorf("received signal %s", sig)
			case <-cancelInterrupt:
				return nil
			}
		}, func(error) {
			close(cancelInterrupt)
		})
	}
	logger.Log("exit", g.Run())
}

// newRegistrar announces the API to consul under taskclient.ServiceName,
// with an HTTP check against the health route.
func newRegistrar(consulAddr, httpAddr string, logger log.Logger) (*consulsd.Registrar, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = consulAddr
	consulClient, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, err
	}

	host, port, err := net.SplitHostPort(httpAddr)
	if err != nil {
		return nil, err
	}
	if host == "" {
		host = "localhost"
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, err
	}

	asr := &api.AgentServiceRegistration{
		ID:      uuid.New().String(),
		Name:    taskclient.ServiceName,
		Address: host,
		Port:    p,
		Check: &api.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s%s/health", net.JoinHostPort(host, port), apigateway.BasePath),
			Interval: "10s",
			Timeout:  "1s",
		},
	}

	client := consulsd.NewClient(consulClient)
	return consulsd.NewRegistrar(client, asr, logger), nil
}

func usageFor(fs *flag.FlagSet, short string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "USAGE\n")
		fmt.Fprintf(os.Stderr, "  %s\n", short)
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "FLAGS\n")
		w := tabwriter.NewWriter(os.Stderr, 0, 2, 2, ' ', 0)
		fs.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(w, "\t-%s %s\t%s\n", f.Name, f.DefValue, f.Usage)
		})
		w.Flush()
		fmt.Fprintf(os.Stderr, "\n")
	}
}

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}
	return value
}
