package client

import (
	"io"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/sd"
	consulsd "github.com/go-kit/kit/sd/consul"
	"github.com/go-kit/kit/sd/lb"
	"github.com/ichigozero/tasktracker/usersvc/pkg/userendpoint"
	"github.com/ichigozero/tasktracker/usersvc/pkg/userservice"
	"github.com/ichigozero/tasktracker/usersvc/pkg/usertransport"
)

func New(apiclient consulsd.Client, logger log.Logger, retryMax int, retryTimeout time.Duration) (userendpoint.Set, error) {
	var (
		tags        = []string{}
		passingOnly = true
		instancer   = consulsd.NewInstancer(apiclient, logger, "tasktracker", tags, passingOnly)
	)
	return NewWithInstancer(instancer, logger, retryMax, retryTimeout), nil
}

func NewWithInstancer(instancer sd.Instancer, logger log.Logger, retryMax int, retryTimeout time.Duration) userendpoint.Set {
	var endpoints userendpoint.Set
	{
		factory := factoryFor(userendpoint.MakeUserEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.UserEndpoint = retry
	}
	{
		factory := factoryFor(userendpoint.MakeCreateUserEndpoint, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.CreateUserEndpoint = retry
	}

	return endpoints
}

func factoryFor(makeEndpoint func(userservice.Service) endpoint.Endpoint, logger log.Logger) sd.Factory {
	return func(instance string) (endpoint.Endpoint, io.Closer, error) {
		service, err := usertransport.NewHTTPClient(instance, logger)
		if err != nil {
			return nil, nil, err
		}
		return makeEndpoint(service), nil, nil
	}
}
