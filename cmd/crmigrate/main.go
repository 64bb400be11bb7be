package main

import (
	"context"
	"log"
	"os"

	"crmigrate/pkg/cluster"
	"crmigrate/pkg/config"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func main() {
	app := newCommand(&runner{
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		colorize: useColor(isatty.IsTerminal(os.Stderr.Fd()), os.Getenv),
		newLister: func(kubeconfig string) (lister, error) {
			restConfig, err := cluster.LoadConfig(kubeconfig)
			if err != nil {
				return nil, err
			}
			return cluster.NewLister(restConfig)
		},
	})

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// useColor reports whether notices on a stderr terminal are styled. NO_COLOR
// (any value) or TERM=dumb turns styling off.
func useColor(terminal bool, getenv func(string) string) bool {
	return terminal && getenv("NO_COLOR") == "" && getenv("TERM") != "dumb"
}

func newCommand(r *runner) *cli.Command {
	var (
		inputFlag = cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Value:   "-",
			Usage:   "the resource list to read (- for stdin)",
		}
		outputFlag = cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Value:   "-",
			Usage:   "where to write the converted resources (- for stdout)",
		}
		fromClusterFlag = cli.BoolFlag{
			Name:  "from-cluster",
			Usage: "list the resources from the cluster instead of reading input",
		}
		kubeconfigFlag = cli.StringFlag{
			Name:  "kubeconfig",
			Usage: "the kubeconfig file used with --from-cluster",
		}
		namespaceFlag = cli.StringFlag{
			Name:    "namespace",
			Aliases: []string{"n"},
			Usage:   "the namespace listed with --from-cluster (default: all)",
		}
		groupFlag       = cli.StringFlag{Name: "group", Usage: "the api group to convert"}
		kindFlag        = cli.StringFlag{Name: "kind", Usage: "the kind to convert"}
		sourceFieldFlag = cli.StringFlag{
			Name:  "source-field",
			Usage: "the legacy spec field",
		}
		destFieldFlag = cli.StringFlag{
			Name:  "dest-field",
			Usage: "the spec field replacing the legacy field",
		}
		destVersionFlag = cli.StringFlag{
			Name:  "dest-version",
			Usage: "the api version of the converted resources",
		}
	)

	return &cli.Command{
		Name:  "crmigrate",
		Usage: "convert legacy custom resources to a newer version",
		Flags: []cli.Flag{
			&inputFlag,
			&outputFlag,
			&fromClusterFlag,
			&kubeconfigFlag,
			&namespaceFlag,
			&groupFlag,
			&kindFlag,
			&sourceFieldFlag,
			&destFieldFlag,
			&destVersionFlag,
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			for flag, field := range map[string]*string{
				groupFlag.Name:       &cfg.Group,
				kindFlag.Name:        &cfg.Kind,
				sourceFieldFlag.Name: &cfg.SourceField,
				destFieldFlag.Name:   &cfg.DestField,
				destVersionFlag.Name: &cfg.DestVersion,
			} {
				if c.IsSet(flag) {
					*field = c.String(flag)
				}
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return r.run(ctx, cfg, options{
				input:       c.String(inputFlag.Name),
				output:      c.String(outputFlag.Name),
				fromCluster: c.Bool(fromClusterFlag.Name),
				kubeconfig:  c.String(kubeconfigFlag.Name),
				namespace:   c.String(namespaceFlag.Name),
			})
		},
	}
}

func listResource(group, version, resource string) schema.GroupVersionResource {
	return schema.GroupVersionResource{
		Group:    group,
		Version:  version,
		Resource: resource,
	}
}
