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
	"strconv"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/log"

	kubizonev1alpha1 "github.com/kubizone/kubizone/api/v1alpha1"
	"github.com/kubizone/kubizone/internal/zonelogic"
)

// ZoneReconciler resolves a Zone's FQDN, binds it to its admitting parent,
// and maintains its content hash.
type ZoneReconciler struct {
	client.Client
	Scheme *runtime.Scheme
}

//+kubebuilder:rbac:groups=kubi.zone,resources=zones,verbs=get;list;watch;update;patch
//+kubebuilder:rbac:groups=kubi.zone,resources=zones/status,verbs=get;update;patch
//+kubebuilder:rbac:groups=kubi.zone,resources=records,verbs=get;list;watch

func (r *ZoneReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	zone := &kubizonev1alpha1.Zone{}
	if err := r.Get(ctx, req.NamespacedName, zone); err != nil {
		if errors.IsNotFound(err) {
			removeResolutionMetric("Zone", req.Name, req.Namespace)
		}
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	result, resolved, err := r.resolve(ctx, zone)
	if err != nil {
		return ctrl.Result{}, err
	}
	if !resolved {
		return result, nil
	}

	if err := r.recomputeHash(ctx, zone); err != nil {
		return ctrl.Result{}, err
	}

	return result, nil
}

// resolve determines the Zone's FQDN from its zoneRef or literal
// domainName and binds it to its admitting parent. It reports whether the
// FQDN ended up resolved (and so is eligible for the hash step), alongside
// the ctrl.Result the caller should return.
func (r *ZoneReconciler) resolve(ctx context.Context, zone *kubizonev1alpha1.Zone) (ctrl.Result, bool, error) {
	logger := log.FromContext(ctx)
	domainName := zone.Spec.DomainName
	ref := zone.Spec.ZoneRef

	switch {
	case ref != nil && isRoot(domainName):
		return r.configurationError(ctx, zone, "zone has both zoneRef and a fully-qualified domainName")

	case ref == nil && !isRoot(domainName):
		return r.configurationError(ctx, zone, "zone has neither zoneRef nor a fully-qualified domainName")

	case ref != nil:
		parentName, parentNamespace := resolveZoneRef(ref, zone.Namespace)
		parent := &kubizonev1alpha1.Zone{}
		if err := r.Get(ctx, types.NamespacedName{Name: parentName, Namespace: parentNamespace}, parent); err != nil {
			if errors.IsNotFound(err) {
				logger.Info("parent zone not found, requeueing", "zone", zone.Name, "parent", parentName)
				if perr := r.patchCondition(ctx, zone, metav1.ConditionFalse, reasonParentNotFound, "parent zone not found"); perr != nil {
					return ctrl.Result{}, false, perr
				}
				updateResolutionMetric("Zone", zone.Name, zone.Namespace, reasonParentNotFound)
				return ctrl.Result{RequeueAfter: requeueNotFound * time.Second}, false, nil
			}
			return ctrl.Result{}, false, err
		}

		if parent.Status.FQDN == nil {
			if perr := r.patchCondition(ctx, zone, metav1.ConditionFalse, reasonParentNotReady, "parent zone has no resolved fqdn yet"); perr != nil {
				return ctrl.Result{}, false, perr
			}
			updateResolutionMetric("Zone", zone.Name, zone.Namespace, reasonParentNotReady)
			return ctrl.Result{RequeueAfter: requeuePrerequisite * time.Second}, false, nil
		}

		// A denial never writes: the zone stays unresolved until either its
		// spec or the parent's delegations change, and the outcome is
		// surfaced through the log and the resolution metric only.
		alleged := domainName + "." + *parent.Status.FQDN
		if !zonelogic.ValidatesZone(parent.Spec.Delegations, zone.Namespace, alleged) {
			logger.Info("parent zone delegation denies this zone", "zone", zone.Name, "parent", parentName, "alleged", alleged)
			updateResolutionMetric("Zone", zone.Name, zone.Namespace, reasonDelegationDenied)
			return ctrl.Result{RequeueAfter: requeuePolicy * time.Second}, false, nil
		}

		if err := r.patchResolved(ctx, zone, alleged, kubizonev1alpha1.ZoneReferenceLabel(parent.Name, parent.Namespace)); err != nil {
			return ctrl.Result{}, false, err
		}
		updateResolutionMetric("Zone", zone.Name, zone.Namespace, reasonResolved)
		return ctrl.Result{RequeueAfter: requeueSteadyState * time.Second}, true, nil

	default: // ref == nil && isRoot(domainName)
		parentName, parentNamespace, found, err := r.findLongestAdmittingParent(ctx, zone, domainName)
		if err != nil {
			return ctrl.Result{}, false, err
		}

		parentLabel := ""
		if found {
			parentLabel = kubizonev1alpha1.ZoneReferenceLabel(parentName, parentNamespace)
		} else {
			logger.Info("no zone admits this root zone as a child; leaving it unparented", "zone", zone.Name)
		}

		if err := r.patchResolved(ctx, zone, domainName, parentLabel); err != nil {
			return ctrl.Result{}, false, err
		}
		updateResolutionMetric("Zone", zone.Name, zone.Namespace, reasonResolved)
		return ctrl.Result{RequeueAfter: requeueSteadyState * time.Second}, true, nil
	}
}

// findLongestAdmittingParent scans every Zone cluster-wide and returns the
// identity of the one with the longest status.fqdn that both admits
// candidateFQDN under its delegations and is not the candidate itself.
func (r *ZoneReconciler) findLongestAdmittingParent(ctx context.Context, zone *kubizonev1alpha1.Zone, candidateFQDN string) (name, ns string, found bool, err error) {
	var zones kubizonev1alpha1.ZoneList
	if err := r.List(ctx, &zones); err != nil {
		return "", "", false, err
	}

	bestLen := -1
	for i := range zones.Items {
		candidate := &zones.Items[i]
		if candidate.Name == zone.Name && candidate.Namespace == zone.Namespace {
			continue
		}
		if candidate.Status.FQDN == nil {
			continue
		}
		if !zonelogic.IsSuffixOf(*candidate.Status.FQDN, candidateFQDN) || *candidate.Status.FQDN == candidateFQDN {
			continue
		}
		if !zonelogic.ValidatesZone(candidate.Spec.Delegations, zone.Namespace, candidateFQDN) {
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

func (r *ZoneReconciler) patchResolved(ctx context.Context, zone *kubizonev1alpha1.Zone, fqdn, parentLabel string) error {
	original := zone.DeepCopy()
	zone.Status.FQDN = ptr.To(fqdn)
	zone.Status.ObservedGeneration = ptr.To(zone.GetGeneration())
	setCondition(&zone.Status.Conditions, zone.GetGeneration(), metav1.ConditionTrue, reasonResolved, "zone resolved")
	if err := r.Status().Patch(ctx, zone, client.MergeFrom(original)); err != nil {
		return err
	}

	if parentLabel == "" {
		return nil
	}
	original = zone.DeepCopy()
	if zone.Labels == nil {
		zone.Labels = map[string]string{}
	}
	if zone.Labels[kubizonev1alpha1.ParentZoneLabel] == parentLabel {
		return nil
	}
	zone.Labels[kubizonev1alpha1.ParentZoneLabel] = parentLabel
	return r.Patch(ctx, zone, client.MergeFrom(original))
}

func (r *ZoneReconciler) patchCondition(ctx context.Context, zone *kubizonev1alpha1.Zone, status metav1.ConditionStatus, reason, message string) error {
	original := zone.DeepCopy()
	setCondition(&zone.Status.Conditions, zone.GetGeneration(), status, reason, message)
	return r.Status().Patch(ctx, zone, client.MergeFrom(original))
}

// configurationError logs the misconfiguration and requeues without writing
// anything: the zone's missing status.fqdn is the user-visible signal.
func (r *ZoneReconciler) configurationError(ctx context.Context, zone *kubizonev1alpha1.Zone, message string) (ctrl.Result, bool, error) {
	log.FromContext(ctx).Info("zone configuration error", "zone", zone.Name, "message", message)
	updateResolutionMetric("Zone", zone.Name, zone.Namespace, reasonConfigurationErr)
	return ctrl.Result{RequeueAfter: requeueConfigError * time.Second}, false, nil
}

// recomputeHash collects every Zone and Record labelled as a child of zone
// and, if the resulting content hash differs from the stored one, patches
// it in.
func (r *ZoneReconciler) recomputeHash(ctx context.Context, zone *kubizonev1alpha1.Zone) error {
	selector := parentZoneLabelSelector(zone.Name, zone.Namespace)

	var childZones kubizonev1alpha1.ZoneList
	if err := r.List(ctx, &childZones, selector); err != nil {
		return err
	}
	var childRecords kubizonev1alpha1.RecordList
	if err := r.List(ctx, &childRecords, selector); err != nil {
		return err
	}

	zoneSpecs := make([]kubizonev1alpha1.ZoneSpec, len(childZones.Items))
	for i, z := range childZones.Items {
		zoneSpecs[i] = z.Spec
	}
	recordSpecs := make([]kubizonev1alpha1.RecordSpec, len(childRecords.Items))
	for i, rec := range childRecords.Items {
		recordSpecs[i] = rec.Spec
	}

	newHash := strconv.FormatUint(zonelogic.ZoneHash(zoneSpecs, recordSpecs), 10)
	if zone.Status.Hash != nil && *zone.Status.Hash == newHash {
		return nil
	}

	original := zone.DeepCopy()
	zone.Status.Hash = ptr.To(newHash)
	return r.Status().Patch(ctx, zone, client.MergeFrom(original))
}

// SetupWithManager sets up the controller with the Manager.
func (r *ZoneReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&kubizonev1alpha1.Zone{}).
		Watches(
			&kubizonev1alpha1.Zone{},
			handler.EnqueueRequestsFromMapFunc(r.mapByParentLabel),
		).
		Watches(
			&kubizonev1alpha1.Record{},
			handler.EnqueueRequestsFromMapFunc(r.mapByParentLabel),
		).
		Complete(r)
}

// mapByParentLabel re-enqueues the Zone named by an observed object's
// parent-zone label, so a child's change wakes its parent's hash step.
func (r *ZoneReconciler) mapByParentLabel(ctx context.Context, obj client.Object) []ctrl.Request {
	labels := obj.GetLabels()
	value, ok := labels[kubizonev1alpha1.ParentZoneLabel]
	if !ok {
		return nil
	}
	name, namespace, ok := splitZoneReferenceLabel(value)
	if !ok {
		return nil
	}
	return []ctrl.Request{{NamespacedName: types.NamespacedName{Name: name, Namespace: namespace}}}
}

// splitZoneReferenceLabel parses the "<name>.<namespace>" encoding used by
// ParentZoneLabel/ZoneFileLabel. Kubernetes namespace names never contain
// ".", so the last segment is unambiguously the namespace.
func splitZoneReferenceLabel(value string) (name, namespace string, ok bool) {
	idx := strings.LastIndexByte(value, '.')
	if idx < 0 {
		return "", "", false
	}
	return value[:idx], value[idx+1:], true
}
