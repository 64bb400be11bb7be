package cluster

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
)

var gvr = schema.GroupVersionResource{
	Group:    "kodachi.com",
	Version:  "v1alpha1",
	Resource: "ffses",
}

func TestList(t *testing.T) {
	ctx := context.Background()
	client := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(
		runtime.NewScheme(),
		map[schema.GroupVersionResource]string{gvr: "FFSList"},
	)

	for _, object := range []*unstructured.Unstructured{
		newFFS("a", "ns1", "x"),
		newFFS("b", "ns2", "y"),
		newFFS("c", "ns2", "z"),
	} {
		if _, err := client.Resource(gvr).
			Namespace(object.GetNamespace()).
			Create(ctx, object, metav1.CreateOptions{}); err != nil {
			t.Fatalf("unexpected err: creating fixture: %v", err)
		}
	}

	lister := Lister{Client: client}
	for _, tc := range []struct {
		name        string
		namespace   string
		wantedNames []string
	}{
		{name: "all-namespaces", wantedNames: []string{"a", "b", "c"}},
		{name: "one-namespace", namespace: "ns2", wantedNames: []string{"b", "c"}},
		{name: "empty-namespace", namespace: "ns3", wantedNames: []string{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			list, err := lister.List(ctx, gvr, tc.namespace)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}

			items, ok := list["items"].([]interface{})
			if !ok {
				t.Fatalf("wanted `items` sequence; found `%T`", list["items"])
			}

			names := []string{}
			for _, item := range items {
				object := item.(map[string]interface{})
				name, _, _ := unstructured.NestedString(object, "metadata", "name")
				names = append(names, name)

				ffs, _, _ := unstructured.NestedString(object, "spec", "ffs")
				if ffs == "" {
					t.Fatalf("wanted `spec.ffs` on `%s`; found none", name)
				}
			}
			slices.Sort(names)

			if !slices.Equal(names, tc.wantedNames) {
				t.Fatalf("wanted `%v`; found `%v`", tc.wantedNames, names)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	const kubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: test
  cluster:
    server: https://127.0.0.1:6443
contexts:
- name: test
  context:
    cluster: test
    namespace: kodachi
    user: test
current-context: test
users:
- name: test
  user:
    token: secret
`
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(kubeconfig), 0600); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if config.Host != "https://127.0.0.1:6443" {
		t.Fatalf("wanted host `https://127.0.0.1:6443`; found `%s`", config.Host)
	}

	if _, err := NewLister(config); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func newFFS(name, namespace, ffs string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "kodachi.com/v1alpha1",
		"kind":       "FFS",
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": namespace,
		},
		"spec": map[string]interface{}{"ffs": ffs},
	}}
}
