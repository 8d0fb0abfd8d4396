/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

package controller

import (
	"context"
	"time"

	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	kubizonev1alpha1 "github.com/kubizone/kubizone/api/v1alpha1"
	"github.com/kubizone/kubizone/internal/zonelogic"
)

// RecordReconciler resolves a Record's FQDN and binds it to its admitting
// parent Zone. Records have no children, so there is no hash step.
type RecordReconciler struct {
	client.Client
	Scheme *runtime.Scheme
}

//+kubebuilder:rbac:groups=kubi.zone,resources=records,verbs=get;list;watch;update;patch
//+kubebuilder:rbac:groups=kubi.zone,resources=records/status,verbs=get;update;patch
//+kubebuilder:rbac:groups=kubi.zone,resources=zones,verbs=get;list;watch

func (r *RecordReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	record := &kubizonev1alpha1.Record{}
	if err := r.Get(ctx, req.NamespacedName, record); err != nil {
		if errors.IsNotFound(err) {
			removeResolutionMetric("Record", req.Name, req.Namespace)
		}
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	result, _, err := r.resolve(ctx, record)
	if err != nil {
		return ctrl.Result{}, err
	}
	return result, nil
}

func (r *RecordReconciler) resolve(ctx context.Context, record *kubizonev1alpha1.Record) (ctrl.Result, bool, error) {
	logger := log.FromContext(ctx)
	domainName := record.Spec.DomainName
	ref := record.Spec.ZoneRef

	switch {
	case ref != nil && isRoot(domainName):
		return r.configurationError(ctx, record, "record has both zoneRef and a fully-qualified domainName")

	case ref == nil && !isRoot(domainName):
		return r.configurationError(ctx, record, "record has neither zoneRef nor a fully-qualified domainName")

	case ref != nil:
		parentName, parentNamespace := resolveZoneRef(ref, record.Namespace)
		parent := &kubizonev1alpha1.Zone{}
		if err := r.Get(ctx, types.NamespacedName{Name: parentName, Namespace: parentNamespace}, parent); err != nil {
			if errors.IsNotFound(err) {
				logger.Info("parent zone not found, requeueing", "record", record.Name, "parent", parentName)
				if perr := r.patchCondition(ctx, record, metav1.ConditionFalse, reasonParentNotFound, "parent zone not found"); perr != nil {
					return ctrl.Result{}, false, perr
				}
				updateResolutionMetric("Record", record.Name, record.Namespace, reasonParentNotFound)
				return ctrl.Result{RequeueAfter: requeueNotFound * time.Second}, false, nil
			}
			return ctrl.Result{}, false, err
		}

		if parent.Status.FQDN == nil {
			if perr := r.patchCondition(ctx, record, metav1.ConditionFalse, reasonParentNotReady, "parent zone has no resolved fqdn yet"); perr != nil {
				return ctrl.Result{}, false, perr
			}
			updateResolutionMetric("Record", record.Name, record.Namespace, reasonParentNotReady)
			return ctrl.Result{RequeueAfter: requeuePrerequisite * time.Second}, false, nil
		}

		// A denial never writes: the record stays unresolved until either
		// its spec or the parent's delegations change, and the outcome is
		// surfaced through the log and the resolution metric only.
		alleged := domainName + "." + *parent.Status.FQDN
		if !zonelogic.ValidatesRecord(parent.Spec.Delegations, record.Namespace, alleged, record.Spec.Type) {
			logger.Info("parent zone delegation denies this record", "record", record.Name, "parent", parentName, "alleged", alleged)
			updateResolutionMetric("Record", record.Name, record.Namespace, reasonDelegationDenied)
			return ctrl.Result{RequeueAfter: requeuePolicy * time.Second}, false, nil
		}

		if err := r.patchResolved(ctx, record, alleged, kubizonev1alpha1.ZoneReferenceLabel(parent.Name, parent.Namespace)); err != nil {
			return ctrl.Result{}, false, err
		}
		updateResolutionMetric("Record", record.Name, record.Namespace, reasonResolved)
		return ctrl.Result{RequeueAfter: requeueSteadyState * time.Second}, true, nil

	default: // ref == nil && isRoot(domainName)
		parentName, parentNamespace, found, err := r.findLongestAdmittingParent(ctx, record.Namespace, domainName, record.Spec.Type)
		if err != nil {
			return ctrl.Result{}, false, err
		}

		parentLabel := ""
		if found {
			parentLabel = kubizonev1alpha1.ZoneReferenceLabel(parentName, parentNamespace)
		} else {
			logger.Info("no zone admits this record", "record", record.Name)
		}

		if err := r.patchResolved(ctx, record, domainName, parentLabel); err != nil {
			return ctrl.Result{}, false, err
		}
		updateResolutionMetric("Record", record.Name, record.Namespace, reasonResolved)
		return ctrl.Result{RequeueAfter: requeueSteadyState * time.Second}, true, nil
	}
}

// findLongestAdmittingParent scans every Zone cluster-wide and returns the
// identity of the one with the longest status.fqdn that both admits a
// record of recordType named candidateFQDN and is a suffix of it, the
// zone apex included.
func (r *RecordReconciler) findLongestAdmittingParent(ctx context.Context, namespace, candidateFQDN, recordType string) (name, ns string, found bool, err error) {
	var zones kubizonev1alpha1.ZoneList
	if err := r.List(ctx, &zones); err != nil {
		return "", "", false, err
	}

	bestLen := -1
	for i := range zones.Items {
		candidate := &zones.Items[i]
		if candidate.Status.FQDN == nil {
			continue
		}
		// Equality is allowed: apex records carry the zone's own FQDN.
		if !zonelogic.IsSuffixOf(*candidate.Status.FQDN, candidateFQDN) {
			continue
		}
		if !zonelogic.ValidatesRecord(candidate.Spec.Delegations, namespace, candidateFQDN, recordType) {
			continue
		}
		if len(*candidate.Status.FQDN) > bestLen {
			bestLen = len(*candidate.Status.FQDN)
			name, ns = candidate.Name, candidate.Namespace
			found = true
		}
	}
	return name, ns, found, nil
}

func (r *RecordReconciler) patchResolved(ctx context.Context, record *kubizonev1alpha1.Record, fqdn, parentLabel string) error {
	original := record.DeepCopy()
	record.Status.FQDN = ptr.To(fqdn)
	record.Status.ObservedGeneration = ptr.To(record.GetGeneration())
	setCondition(&record.Status.Conditions, record.GetGeneration(), metav1.ConditionTrue, reasonResolved, "record resolved")
	if err := r.Status().Patch(ctx, record, client.MergeFrom(original)); err != nil {
		return err
	}

	if parentLabel == "" {
		return nil
	}
	original = record.DeepCopy()
	if record.Labels == nil {
		record.Labels = map[string]string{}
	}
	if record.Labels[kubizonev1alpha1.ParentZoneLabel] == parentLabel {
		return nil
	}
	record.Labels[kubizonev1alpha1.ParentZoneLabel] = parentLabel
	return r.Patch(ctx, record, client.MergeFrom(original))
}

func (r *RecordReconciler) patchCondition(ctx context.Context, record *kubizonev1alpha1.Record, status metav1.ConditionStatus, reason, message string) error {
	original := record.DeepCopy()
	setCondition(&record.Status.Conditions, record.GetGeneration(), status, reason, message)
	return r.Status().Patch(ctx, record, client.MergeFrom(original))
}

// configurationError logs the misconfiguration and requeues without writing
// anything: the record's missing status.fqdn is the user-visible signal.
func (r *RecordReconciler) configurationError(ctx context.Context, record *kubizonev1alpha1.Record, message string) (ctrl.Result, bool, error) {
	log.FromContext(ctx).Info("record configuration error", "record", record.Name, "message", message)
	updateResolutionMetric("Record", record.Name, record.Namespace, reasonConfigurationErr)
	return ctrl.Result{RequeueAfter: requeueConfigError * time.Second}, false, nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *RecordReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&kubizonev1alpha1.Record{}).
		Complete(r)
}
