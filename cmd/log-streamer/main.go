package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"rp-pay-dashboard/internal/observability"
)

// ComposeConfig is the part of docker-compose.yml the streamer reads.
type ComposeConfig struct {
	Services map[string]any `yaml:"services"`
}

func main() {
	composePath := flag.String("compose", "docker-compose.yml", "Path to the compose file listing the services to follow")
	flag.Parse()

	logger := observability.SetupLogger("development")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		logger.Error("Failed to create Docker client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := cli.Close(); err != nil {
			logger.Warn("Error closing Docker client", "error", err)
		}
	}()

	services, err := readServices(*composePath)
	if err != nil {
		logger.Error("Failed to read compose file", "path", *composePath, "error", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup
	var out sync.Mutex
	logger.Info("Starting log streams", "services", len(services))
	for i, service := range services {
		wg.Add(1)
		go func(service string, c *color.Color) {
			defer wg.Done()
			if err := streamServiceLogs(ctx, cli, service, func(line string) {
				out.Lock()
				defer out.Unlock()
				fmt.Println(formatLine(service, c, line))
			}); err != nil && ctx.Err() == nil {
				logger.Warn("Log stream ended", "service", service, "error", err)
			}
		}(service, colorPalette[i%len(colorPalette)])
	}

	wg.Wait()
	logger.Info("All log streams finished")
}

// readServices lists the service names of a compose file in a stable order.
func readServices(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg ComposeConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse compose file: %w", err)
	}
	services := make([]string, 0, len(cfg.Services))
	for name := range cfg.Services {
		services = append(services, name)
	}
	sort.Strings(services)
	return services, nil
}

// streamServiceLogs follows the container of a compose service and hands
// every log line to emit.
func streamServiceLogs(ctx context.Context, cli *client.Client, service string, emit func(string)) error {
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		Filters: filters.NewArgs(filters.Arg("label", "com.docker.compose.service="+service)),
	})
	if err != nil {
		return fmt.Errorf("list containers: %w", err)
	}
	if len(containers) == 0 {
		return fmt.Errorf("no container for service %s", service)
	}

	inspect, err := cli.ContainerInspect(ctx, containers[0].ID)
	if err != nil {
		return fmt.Errorf("inspect container: %w", err)
	}

	logs, err := cli.ContainerLogs(ctx, containers[0].ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return fmt.Errorf("get logs: %w", err)
	}
	defer logs.Close()

	// Without a TTY the stream is multiplexed and needs demuxing.
	var stream io.Reader = logs
	if inspect.Config == nil || !inspect.Config.Tty {
		pr, pw := io.Pipe()
		go func() {
			_, err := stdcopy.StdCopy(pw, pw, logs)
			pw.CloseWithError(err)
		}()
		stream = pr
	}

	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		emit(scanner.Text())
	}
	return scanner.Err()
}
