// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package southbound

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/open-edge-platform/messaging-console-tests/internal/model"
	"github.com/open-edge-platform/orch-library/go/dazl"
	coreV1 "k8s.io/api/core/v1"
	rbacV1 "k8s.io/api/rbac/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metaV1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	k8syaml "k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	k8sconfig "sigs.k8s.io/controller-runtime/pkg/client/config"
)

var log = dazl.GetPackageLogger()

// ErrNotFound is returned when a requested resource does not exist
var ErrNotFound = errors.New("not found")

// K8s is the subset of the cluster API the console tests drive
type K8s interface {
	ReadSecret(ctx context.Context, namespace string, name string) (map[string][]byte, error)

	CreateAddressSpace(ctx context.Context, as model.AddressSpace) error
	GetAddressSpace(ctx context.Context, namespace string, name string) (model.AddressSpace, error)
	ListAddressSpaces(ctx context.Context, namespace string) ([]model.AddressSpace, error)
	DeleteAddressSpace(ctx context.Context, namespace string, name string) error

	CreateAddress(ctx context.Context, a model.Address) error
	GetAddress(ctx context.Context, namespace string, name string) (model.Address, error)
	ListAddresses(ctx context.Context, namespace string, addressSpace string) ([]model.Address, error)
	DeleteAddress(ctx context.Context, namespace string, name string) error

	CreateOrUpdateUser(ctx context.Context, user model.MessagingUser) error
	DeleteUser(ctx context.Context, namespace string, name string) error

	CreateAuthenticationService(ctx context.Context, a model.AuthenticationService) error
	GetAuthenticationService(ctx context.Context, namespace string, name string) (model.AuthenticationService, error)
	DeleteAuthenticationService(ctx context.Context, namespace string, name string) error

	CreateNamespace(ctx context.Context, name string) error
	DeleteNamespace(ctx context.Context, name string) error
	CreateRoleBinding(ctx context.Context, namespace string, name string, clusterRole string, user string) error

	ApplyManifest(ctx context.Context, namespace string, manifest string) ([]model.ObjectRef, error)
}

func NewK8s() (K8s, error) {
	return NewK8sClient()
}

var K8sFactory = NewK8s

var kindResources = map[string]schema.GroupVersionResource{
	"AddressSpace":          model.AddressSpaceResource,
	"Address":               model.AddressResource,
	"MessagingUser":         model.UserResource,
	"AuthenticationService": model.AuthServiceResource,
}

type K8sClient struct {
	clientset kubernetes.Interface
	dynamic   dynamic.Interface
}

// NewK8sClient connects with the kubeconfig or in-cluster configuration
func NewK8sClient() (*K8sClient, error) {
	config, err := k8sconfig.GetConfig()
	if err != nil {
		return nil, err
	}
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, err
	}
	dyn, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, err
	}
	return NewK8sClientFor(clientset, dyn), nil
}

// NewK8sClientFor wraps existing clients
func NewK8sClientFor(clientset kubernetes.Interface, dyn dynamic.Interface) *K8sClient {
	return &K8sClient{
		clientset: clientset,
		dynamic:   dyn,
	}
}

func notFound(err error, kind string, namespace string, name string) error {
	if k8serrors.IsNotFound(err) {
		return fmt.Errorf("%s %s/%s: %w", kind, namespace, name, ErrNotFound)
	}
	return fmt.Errorf("%s %s/%s: %w", kind, namespace, name, err)
}

func ignoreNotFound(err error) error {
	if k8serrors.IsNotFound(err) {
		return nil
	}
	return err
}

func (k *K8sClient) ReadSecret(ctx context.Context, namespace string, name string) (map[string][]byte, error) {
	secret, err := k.clientset.CoreV1().Secrets(namespace).Get(ctx, name, metaV1.GetOptions{})
	if err != nil {
		return nil, notFound(err, "secret", namespace, name)
	}

	return secret.Data, nil
}

func (k *K8sClient) CreateAddressSpace(ctx context.Context, as model.AddressSpace) error {
	log.Infof("Creating address space %s", as)
	_, err := k.dynamic.Resource(model.AddressSpaceResource).Namespace(as.Namespace).Create(ctx, as.ToUnstructured(), metaV1.CreateOptions{})
	return err
}

func (k *K8sClient) GetAddressSpace(ctx context.Context, namespace string, name string) (model.AddressSpace, error) {
	u, err := k.dynamic.Resource(model.AddressSpaceResource).Namespace(namespace).Get(ctx, name, metaV1.GetOptions{})
	if err != nil {
		return model.AddressSpace{}, notFound(err, "address space", namespace, name)
	}
	return model.AddressSpaceFromUnstructured(u)
}

func (k *K8sClient) ListAddressSpaces(ctx context.Context, namespace string) ([]model.AddressSpace, error) {
	list, err := k.dynamic.Resource(model.AddressSpaceResource).Namespace(namespace).List(ctx, metaV1.ListOptions{})
	if err != nil {
		return nil, err
	}
	spaces := make([]model.AddressSpace, 0, len(list.Items))
	for i := range list.Items {
		as, err := model.AddressSpaceFromUnstructured(&list.Items[i])
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, as)
	}
	return spaces, nil
}

func (k *K8sClient) DeleteAddressSpace(ctx context.Context, namespace string, name string) error {
	log.Infof("Deleting address space %s/%s", namespace, name)
	err := k.dynamic.Resource(model.AddressSpaceResource).Namespace(namespace).Delete(ctx, name, metaV1.DeleteOptions{})
	return ignoreNotFound(err)
}

func (k *K8sClient) CreateAddress(ctx context.Context, a model.Address) error {
	log.Infof("Creating address %s", a)
	_, err := k.dynamic.Resource(model.AddressResource).Namespace(a.Namespace).Create(ctx, a.ToUnstructured(), metaV1.CreateOptions{})
	return err
}

func (k *K8sClient) GetAddress(ctx context.Context, namespace string, name string) (model.Address, error) {
	u, err := k.dynamic.Resource(model.AddressResource).Namespace(namespace).Get(ctx, name, metaV1.GetOptions{})
	if err != nil {
		return model.Address{}, notFound(err, "address", namespace, name)
	}
	return model.AddressFromUnstructured(u)
}

// ListAddresses lists the addresses of addressSpace, or of every space when addressSpace is empty
func (k *K8sClient) ListAddresses(ctx context.Context, namespace string, addressSpace string) ([]model.Address, error) {
	list, err := k.dynamic.Resource(model.AddressResource).Namespace(namespace).List(ctx, metaV1.ListOptions{})
	if err != nil {
		return nil, err
	}
	addresses := make([]model.Address, 0, len(list.Items))
	for i := range list.Items {
		a, err := model.AddressFromUnstructured(&list.Items[i])
		if err != nil {
			return nil, err
		}
		if addressSpace != "" && a.AddressSpace != addressSpace {
			continue
		}
		addresses = append(addresses, a)
	}
	return addresses, nil
}

func (k *K8sClient) DeleteAddress(ctx context.Context, namespace string, name string) error {
	log.Infof("Deleting address %s/%s", namespace, name)
	err := k.dynamic.Resource(model.AddressResource).Namespace(namespace).Delete(ctx, name, metaV1.DeleteOptions{})
	return ignoreNotFound(err)
}

func (k *K8sClient) CreateOrUpdateUser(ctx context.Context, user model.MessagingUser) error {
	log.Infof("Creating messaging user %s in %s", user.Name(), user.Namespace)
	users := k.dynamic.Resource(model.UserResource).Namespace(user.Namespace)
	desired := user.ToUnstructured()
	existing, err := users.Get(ctx, user.Name(), metaV1.GetOptions{})
	if k8serrors.IsNotFound(err) {
		_, err = users.Create(ctx, desired, metaV1.CreateOptions{})
		return err
	}
	if err != nil {
		return err
	}
	desired.SetResourceVersion(existing.GetResourceVersion())
	_, err = users.Update(ctx, desired, metaV1.UpdateOptions{})
	return err
}

func (k *K8sClient) DeleteUser(ctx context.Context, namespace string, name string) error {
	err := k.dynamic.Resource(model.UserResource).Namespace(namespace).Delete(ctx, name, metaV1.DeleteOptions{})
	return ignoreNotFound(err)
}

func (k *K8sClient) CreateAuthenticationService(ctx context.Context, a model.AuthenticationService) error {
	log.Infof("Creating authentication service %s/%s", a.Namespace, a.Name)
	_, err := k.dynamic.Resource(model.AuthServiceResource).Namespace(a.Namespace).Create(ctx, a.ToUnstructured(), metaV1.CreateOptions{})
	return err
}

func (k *K8sClient) GetAuthenticationService(ctx context.Context, namespace string, name string) (model.AuthenticationService, error) {
	u, err := k.dynamic.Resource(model.AuthServiceResource).Namespace(namespace).Get(ctx, name, metaV1.GetOptions{})
	if err != nil {
		return model.AuthenticationService{}, notFound(err, "authentication service", namespace, name)
	}
	return model.AuthenticationServiceFromUnstructured(u), nil
}

func (k *K8sClient) DeleteAuthenticationService(ctx context.Context, namespace string, name string) error {
	err := k.dynamic.Resource(model.AuthServiceResource).Namespace(namespace).Delete(ctx, name, metaV1.DeleteOptions{})
	return ignoreNotFound(err)
}

func (k *K8sClient) CreateNamespace(ctx context.Context, name string) error {
	log.Infof("Creating namespace %s", name)
	ns := &coreV1.Namespace{ObjectMeta: metaV1.ObjectMeta{Name: name}}
	_, err := k.clientset.CoreV1().Namespaces().Create(ctx, ns, metaV1.CreateOptions{})
	if k8serrors.IsAlreadyExists(err) {
		return nil
	}
	return err
}

func (k *K8sClient) DeleteNamespace(ctx context.Context, name string) error {
	log.Infof("Deleting namespace %s", name)
	err := k.clientset.CoreV1().Namespaces().Delete(ctx, name, metaV1.DeleteOptions{})
	return ignoreNotFound(err)
}

// CreateRoleBinding binds clusterRole to user inside namespace
func (k *K8sClient) CreateRoleBinding(ctx context.Context, namespace string, name string, clusterRole string, user string) error {
	log.Infof("Binding cluster role %s to %s in %s", clusterRole, user, namespace)
	binding := &rbacV1.RoleBinding{
		ObjectMeta: metaV1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		RoleRef: rbacV1.RoleRef{
			APIGroup: rbacV1.GroupName,
			Kind:     "ClusterRole",
			Name:     clusterRole,
		},
		Subjects: []rbacV1.Subject{{
			APIGroup: rbacV1.GroupName,
			Kind:     rbacV1.UserKind,
			Name:     user,
		}},
	}
	_, err := k.clientset.RbacV1().RoleBindings(namespace).Create(ctx, binding, metaV1.CreateOptions{})
	if k8serrors.IsAlreadyExists(err) {
		return nil
	}
	return err
}

// ApplyManifest creates every messaging resource of a multi-document YAML manifest, as copied from the
// console deployment snippet. Objects without a namespace land in namespace. Returns where each object was created.
func (k *K8sClient) ApplyManifest(ctx context.Context, namespace string, manifest string) ([]model.ObjectRef, error) {
	decoder := k8syaml.NewYAMLOrJSONDecoder(strings.NewReader(manifest), 4096)
	var created []model.ObjectRef
	for {
		obj := &unstructured.Unstructured{}
		if err := decoder.Decode(&obj.Object); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return created, fmt.Errorf("decoding manifest: %w", err)
		}
		if len(obj.Object) == 0 {
			continue
		}
		gvr, ok := kindResources[obj.GetKind()]
		if !ok {
			return created, fmt.Errorf("unsupported kind %q in manifest", obj.GetKind())
		}
		ns := obj.GetNamespace()
		if ns == "" {
			ns = namespace
			obj.SetNamespace(ns)
		}
		if _, err := k.dynamic.Resource(gvr).Namespace(ns).Create(ctx, obj, metaV1.CreateOptions{}); err != nil {
			return created, fmt.Errorf("creating %s %s/%s: %w", obj.GetKind(), ns, obj.GetName(), err)
		}
		created = append(created, model.ObjectRef{Kind: obj.GetKind(), Namespace: ns, Name: obj.GetName()})
	}
	return created, nil
}

// ReadCredentials reads a login from the username and password keys of a secret
func ReadCredentials(ctx context.Context, k K8s, namespace string, secret string) (model.UserCredentials, error) {
	data, err := k.ReadSecret(ctx, namespace, secret)
	if err != nil {
		return model.UserCredentials{}, err
	}
	creds := model.UserCredentials{
		Username: string(data["username"]),
		Password: string(data["password"]),
	}
	if creds.Username == "" || creds.Password == "" {
		return creds, fmt.Errorf("secret %s/%s has no username or password", namespace, secret)
	}
	return creds, nil
}
