/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"github.com/spf13/cobra"
	apiextensionsclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/kubizone/kubizone/internal/controller"
	"github.com/kubizone/kubizone/internal/crd"

	kubizonev1alpha1 "github.com/kubizone/kubizone/api/v1alpha1"
	zonefilev1alpha1 "github.com/kubizone/kubizone/api/zonefile/v1alpha1"
	//+kubebuilder:scaffold:imports
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(kubizonev1alpha1.AddToScheme(scheme))
	utilruntime.Must(zonefilev1alpha1.AddToScheme(scheme))
	//+kubebuilder:scaffold:scheme
}

func main() {
	root := &cobra.Command{
		Use:   "kubizone",
		Short: "Kubizone reconciles declarative Zone/Record/ZoneFile objects into DNS zone files",
	}

	root.AddCommand(
		newPrintCRDsCommand(),
		newDumpCRDsCommand(),
		newDangerRecreateCRDsCommand(),
		newReconcileCommand(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newPrintCRDsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "print-crds",
		Short: "Print all Kubizone CustomResourceDefinition manifests to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return crd.Print(os.Stdout)
		},
	}
}

func newDumpCRDsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump-crds <path>",
		Short: "Write CRD YAML files under <path>/<group>/<version>/<kind>.yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return crd.DumpTo(args[0])
		},
	}
}

func newDangerRecreateCRDsCommand() *cobra.Command {
	var confirmed bool

	c := &cobra.Command{
		Use:   "danger-recreate-crds",
		Short: "Delete and recreate all Kubizone CRD registrations (DESTROYS all Zones/Records/ZoneFiles)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				fmt.Fprintln(os.Stderr, "Recreating all CustomResourceDefinitions will delete")
				fmt.Fprintln(os.Stderr, "**ALL** Zones, Records and ZoneFiles across the ENTIRE CLUSTER.")
				fmt.Fprintln(os.Stderr, "Pass --yes-im-sure-i-want-to-delete-all-resources to proceed.")
				os.Exit(1)
			}
			clientset, err := apiextensionsClientset()
			if err != nil {
				return err
			}
			setupLog.Info("deleting and recreating all Kubizone CRDs; this deletes every Zone, Record and ZoneFile in the cluster")
			return crd.RecreateAll(context.Background(), clientset)
		},
	}
	c.Flags().BoolVar(&confirmed, "yes-im-sure-i-want-to-delete-all-resources", false,
		"required acknowledgement that this destroys all Zones, Records and ZoneFiles")
	return c
}

func apiextensionsClientset() (apiextensionsclientset.Interface, error) {
	return apiextensionsclientset.NewForConfig(ctrl.GetConfigOrDie())
}

func newReconcileCommand() *cobra.Command {
	var (
		metricsAddr          string
		probeAddr            string
		enableLeaderElection bool
		dangerRecreateCRDs   bool
	)

	opts := zap.Options{Development: false}

	c := &cobra.Command{
		Use:   "reconcile",
		Short: "Run the Zone/Record resolver and ZoneFile renderer control loops",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
			return runReconcile(metricsAddr, probeAddr, enableLeaderElection, dangerRecreateCRDs)
		},
	}

	c.Flags().StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	c.Flags().StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	c.Flags().BoolVar(&enableLeaderElection, "leader-elect", false,
		"Enable leader election for controller manager. Enabling this will ensure there is only one active controller manager.")
	c.Flags().BoolVar(&dangerRecreateCRDs, "danger-recreate-crds", false,
		"Delete and recreate all Kubizone CRDs before reconciling (DESTROYS all Zones/Records/ZoneFiles)")

	goFlags := flag.NewFlagSet("zap", flag.ExitOnError)
	opts.BindFlags(goFlags)
	c.Flags().AddGoFlagSet(goFlags)

	return c
}

func runReconcile(metricsAddr, probeAddr string, enableLeaderElection, dangerRecreateCRDs bool) error {
	if dangerRecreateCRDs {
		setupLog.Info("--danger-recreate-crds set, deleting and recreating all Kubizone CRDs; this deletes every Zone, Record and ZoneFile in the cluster")
		clientset, err := apiextensionsClientset()
		if err != nil {
			setupLog.Error(err, "unable to build apiextensions client")
			return err
		}
		if err := crd.RecreateAll(context.Background(), clientset); err != nil {
			setupLog.Error(err, "unable to recreate CRDs")
			return err
		}
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress: metricsAddr,
		},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "kubizone.kubi.zone",
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		return err
	}

	if err = (&controller.ZoneReconciler{
		Client: mgr.GetClient(),
		Scheme: mgr.GetScheme(),
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "Zone")
		return err
	}

	if err = (&controller.RecordReconciler{
		Client: mgr.GetClient(),
		Scheme: mgr.GetScheme(),
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "Record")
		return err
	}

	if err = (&controller.ZoneFileReconciler{
		Client: mgr.GetClient(),
		Scheme: mgr.GetScheme(),
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "ZoneFile")
		return err
	}
	//+kubebuilder:scaffold:builder

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		return err
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		return err
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		return err
	}
	return nil
}
