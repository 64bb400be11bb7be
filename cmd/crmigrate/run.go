package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"crmigrate/pkg/config"
	clog "crmigrate/pkg/log"
	"crmigrate/pkg/migrate"
	"crmigrate/pkg/stream"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

type lister interface {
	List(
		ctx context.Context,
		gvr schema.GroupVersionResource,
		namespace string,
	) (map[string]interface{}, error)
}

type runner struct {
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	colorize  bool
	newLister func(kubeconfig string) (lister, error)
}

type options struct {
	input       string
	output      string
	fromCluster bool
	kubeconfig  string
	namespace   string
}

// run reads the resource list, converts it, and writes the converted records.
// Output is only written once the whole list converted successfully.
func (r *runner) run(
	ctx context.Context,
	cfg *config.Config,
	opts options,
) error {
	logger, err := clog.New(r.stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx = clog.Context(ctx, logger)

	filter, err := migrate.NewFilter(
		cfg.Rule(),
		migrate.NewNotifier(r.stderr, r.colorize),
	)
	if err != nil {
		return err
	}
	filter.Logger = logger

	list, err := r.read(ctx, cfg, opts)
	if err != nil {
		return err
	}

	result, err := filter.Migrate(list)
	if err != nil {
		return err
	}
	logger.Debug(
		"migration complete",
		"scanned", result.Scanned,
		"converted", len(result.Records),
	)

	return r.write(opts.output, result)
}

func (r *runner) read(
	ctx context.Context,
	cfg *config.Config,
	opts options,
) (map[string]interface{}, error) {
	if opts.fromCluster {
		l, err := r.newLister(opts.kubeconfig)
		if err != nil {
			return nil, err
		}
		return l.List(
			ctx,
			listResource(cfg.Group, cfg.ListVersion, cfg.Resource),
			opts.namespace,
		)
	}

	if opts.input == "" || opts.input == "-" {
		return stream.Decode(r.stdin)
	}

	file, err := os.Open(opts.input)
	if err != nil {
		return nil, fmt.Errorf("opening input file `%s`: %w", opts.input, err)
	}
	defer file.Close()

	list, err := stream.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("reading input file `%s`: %w", opts.input, err)
	}
	return list, nil
}

func (r *runner) write(output string, result migrate.Result) error {
	if output == "" || output == "-" {
		return stream.Encode(r.stdout, result.Records)
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating output file `%s`: %w", output, err)
	}
	if err := stream.Encode(file, result.Records); err != nil {
		file.Close()
		return fmt.Errorf("writing output file `%s`: %w", output, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing output file `%s`: %w", output, err)
	}
	return nil
}
