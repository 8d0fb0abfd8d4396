/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

// Package crd embeds Kubizone's CustomResourceDefinition manifests and
// provides the operations backing the operator binary's print-crds,
// dump-crds and danger-recreate-crds subcommands.
package crd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	clientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/yaml"

	"github.com/kubizone/kubizone/config"
)

// manifestFiles lists the embedded manifests in the stable order they
// should be printed/dumped/recreated in: Zone and Record before ZoneFile,
// since ZoneFile references a Zone.
var manifestFiles = []string{
	"crd/bases/kubi.zone_zones.yaml",
	"crd/bases/kubi.zone_records.yaml",
	"crd/bases/zonefile.kubi.zone_zonefiles.yaml",
}

// establishTimeout bounds how long RecreateAll waits for each CRD to be
// gone after deletion, and to reach the "Established" condition after
// recreation.
const establishTimeout = 30 * time.Second

// All parses and returns every embedded CustomResourceDefinition, in a
// stable order.
func All() ([]*apiextensionsv1.CustomResourceDefinition, error) {
	out := make([]*apiextensionsv1.CustomResourceDefinition, 0, len(manifestFiles))
	for _, path := range manifestFiles {
		raw, err := config.CRDs.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading embedded manifest %s", path)
		}
		crd := &apiextensionsv1.CustomResourceDefinition{}
		if err := yaml.Unmarshal(raw, crd); err != nil {
			return nil, errors.Wrapf(err, "parsing embedded manifest %s", path)
		}
		out = append(out, crd)
	}
	return out, nil
}

// Print writes every CRD manifest to w, document-separated, matching the
// "---\n<yaml>" framing the original dumper used.
func Print(w io.Writer) error {
	crds, err := All()
	if err != nil {
		return err
	}
	for _, crd := range crds {
		out, err := yaml.Marshal(crd)
		if err != nil {
			return errors.Wrapf(err, "marshalling %s", crd.Name)
		}
		if _, err := fmt.Fprintf(w, "---\n%s", out); err != nil {
			return err
		}
	}
	return nil
}

// DumpTo writes each CRD as its own file under
// <dir>/<group>/<version>/<kind>.yaml.
func DumpTo(dir string) error {
	crds, err := All()
	if err != nil {
		return err
	}
	for _, crd := range crds {
		for _, v := range crd.Spec.Versions {
			path := filepath.Join(dir, crd.Spec.Group, v.Name)
			if err := os.MkdirAll(path, 0o755); err != nil {
				return errors.Wrapf(err, "creating %s", path)
			}
			out, err := yaml.Marshal(crd)
			if err != nil {
				return errors.Wrapf(err, "marshalling %s", crd.Name)
			}
			file := filepath.Join(path, crd.Spec.Names.Kind+".yaml")
			if err := os.WriteFile(file, append([]byte("---\n"), out...), 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", file)
			}
		}
	}
	return nil
}

// RecreateAll deletes and recreates every embedded CRD against the cluster,
// waiting up to establishTimeout for each to reach "Established" after
// recreation. This is destructive: every Zone, Record and ZoneFile in the
// cluster is deleted along with its CRD.
func RecreateAll(ctx context.Context, client clientset.Interface) error {
	crds, err := All()
	if err != nil {
		return err
	}
	for _, crd := range crds {
		if err := recreateOne(ctx, client, crd); err != nil {
			return errors.Wrapf(err, "recreating %s", crd.Name)
		}
	}
	return nil
}

func recreateOne(ctx context.Context, client clientset.Interface, crd *apiextensionsv1.CustomResourceDefinition) error {
	api := client.ApiextensionsV1().CustomResourceDefinitions()

	if err := api.Delete(ctx, crd.Name, metav1.DeleteOptions{}); err != nil && !apierrors.IsNotFound(err) {
		return errors.Wrap(err, "deleting")
	}

	deleteCtx, cancel := context.WithTimeout(ctx, establishTimeout)
	defer cancel()
	if err := wait.PollUntilContextCancel(deleteCtx, time.Second, true, func(ctx context.Context) (bool, error) {
		_, err := api.Get(ctx, crd.Name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			return true, nil
		}
		return false, err
	}); err != nil {
		return errors.Wrap(err, "waiting for deletion")
	}

	toCreate := crd.DeepCopy()
	toCreate.ResourceVersion = ""
	toCreate.UID = ""
	if _, err := api.Create(ctx, toCreate, metav1.CreateOptions{}); err != nil {
		return errors.Wrap(err, "creating")
	}

	createCtx, cancel2 := context.WithTimeout(ctx, establishTimeout)
	defer cancel2()
	return wait.PollUntilContextCancel(createCtx, time.Second, true, func(ctx context.Context) (bool, error) {
		got, err := api.Get(ctx, crd.Name, metav1.GetOptions{})
		if err != nil {
			return false, err
		}
		return isEstablished(got), nil
	})
}

func isEstablished(crd *apiextensionsv1.CustomResourceDefinition) bool {
	for _, cond := range crd.Status.Conditions {
		if cond.Type == apiextensionsv1.Established && cond.Status == apiextensionsv1.ConditionTrue {
			return true
		}
	}
	return false
}
