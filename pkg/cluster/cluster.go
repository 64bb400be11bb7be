// Package cluster lists resource records straight from a Kubernetes API
// server, in the same shape `kubectl get <resource> -A -o yaml` prints them.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"crmigrate/pkg/log"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// pageSize matches kubectl's default chunk size.
const pageSize = 500

// LoadConfig loads the client configuration from `kubeconfig`, or from
// `~/.kube/config` if `kubeconfig` is empty.
func LoadConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig == "" {
		home := homedir.HomeDir()
		if home == "" {
			return nil, errors.New(
				"loading kubernetes config: missing required environment " +
					"variable: HOME",
			)
		}
		kubeconfig = filepath.Join(home, ".kube", "config")
	}

	config := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		&clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig},
		&clientcmd.ConfigOverrides{},
	)

	restConfig, err := config.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf(
			"loading kubernetes config `%s`: %w",
			kubeconfig,
			err,
		)
	}
	return restConfig, nil
}

// Lister reads records through the dynamic client. It never writes.
type Lister struct {
	Client dynamic.Interface
}

func NewLister(config *rest.Config) (*Lister, error) {
	client, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("creating dynamic client: %w", err)
	}
	return &Lister{Client: client}, nil
}

// List fetches every `gvr` object in `namespace` (all namespaces if empty)
// and returns them under an `items` key. Pages are fetched until the server
// reports no more.
func (l *Lister) List(
	ctx context.Context,
	gvr schema.GroupVersionResource,
	namespace string,
) (map[string]interface{}, error) {
	logger := log.FromContext(ctx).With(
		"resource", gvr.String(),
		"namespace", namespace,
	)

	items := []interface{}{}
	opts := metav1.ListOptions{Limit: pageSize}
	for {
		page, err := l.Client.Resource(gvr).
			Namespace(namespace).
			List(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf(
				"listing `%s` in namespace `%s`: %w",
				gvr.String(),
				namespace,
				err,
			)
		}

		for i := range page.Items {
			items = append(items, page.Items[i].Object)
		}
		logger.Debug("fetched page", "count", len(page.Items))

		if opts.Continue = page.GetContinue(); opts.Continue == "" {
			break
		}
	}

	logger.Debug("listed records", "count", len(items))
	return map[string]interface{}{"items": items}, nil
}
