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

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	kubizonev1alpha1 "github.com/kubizone/kubizone/api/v1alpha1"
)

var _ = Describe("Record Controller", func() {

	const (
		namespace = "example2"
		timeout   = time.Second * 5
		interval  = time.Millisecond * 250
	)

	Context("When a Record declares a fully-qualified domainName under nested Zones", func() {
		It("resolves its FQDN and attaches to the longest admitting parent", func() {
			ctx := context.Background()

			outer := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: "outer-zone", Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName: "outer.example.",
					Delegations: []kubizonev1alpha1.Delegation{
						{Zones: []string{"*.outer.example."}, Records: []kubizonev1alpha1.RecordDelegation{{Pattern: "*.outer.example."}}},
					},
				},
			}
			Expect(k8sClient.Create(ctx, outer)).To(Succeed())

			inner := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: "inner-zone", Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName: "inner",
					ZoneRef:    &kubizonev1alpha1.ZoneRef{Name: "outer-zone"},
					Delegations: []kubizonev1alpha1.Delegation{
						{Records: []kubizonev1alpha1.RecordDelegation{{Pattern: "*.inner.outer.example."}}},
					},
				},
			}
			Expect(k8sClient.Create(ctx, inner)).To(Succeed())

			innerKey := types.NamespacedName{Name: "inner-zone", Namespace: namespace}
			Eventually(func() bool {
				got := &kubizonev1alpha1.Zone{}
				if err := k8sClient.Get(ctx, innerKey, got); err != nil {
					return false
				}
				return got.Status.FQDN != nil && *got.Status.FQDN == "inner.outer.example."
			}, timeout, interval).Should(BeTrue())

			record := &kubizonev1alpha1.Record{
				ObjectMeta: metav1.ObjectMeta{Name: "api-record", Namespace: namespace},
				Spec: kubizonev1alpha1.RecordSpec{
					DomainName: "api.inner.outer.example.",
					Type:       "A",
					RData:      "203.0.113.20",
				},
			}
			Expect(k8sClient.Create(ctx, record)).To(Succeed())

			recordKey := types.NamespacedName{Name: "api-record", Namespace: namespace}
			Eventually(func() bool {
				got := &kubizonev1alpha1.Record{}
				if err := k8sClient.Get(ctx, recordKey, got); err != nil {
					return false
				}
				return got.Labels[kubizonev1alpha1.ParentZoneLabel] == kubizonev1alpha1.ZoneReferenceLabel("inner-zone", namespace)
			}, timeout, interval).Should(BeTrue())
		})
	})

	Context("When a Record's domainName matches no delegation", func() {
		It("leaves the Record resolved but unparented", func() {
			ctx := context.Background()

			zone := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: "narrow-zone", Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName:  "narrow.example.",
					Delegations: []kubizonev1alpha1.Delegation{{Records: []kubizonev1alpha1.RecordDelegation{{Pattern: "allowed.narrow.example."}}}},
				},
			}
			Expect(k8sClient.Create(ctx, zone)).To(Succeed())

			record := &kubizonev1alpha1.Record{
				ObjectMeta: metav1.ObjectMeta{Name: "stray-record", Namespace: namespace},
				Spec: kubizonev1alpha1.RecordSpec{
					DomainName: "stray.example.",
					Type:       "TXT",
					RData:      "\"hello\"",
				},
			}
			Expect(k8sClient.Create(ctx, record)).To(Succeed())

			recordKey := types.NamespacedName{Name: "stray-record", Namespace: namespace}
			Eventually(func() bool {
				got := &kubizonev1alpha1.Record{}
				if err := k8sClient.Get(ctx, recordKey, got); err != nil {
					return false
				}
				cond := meta.FindStatusCondition(got.Status.Conditions, conditionResolved)
				return cond != nil && cond.Reason == reasonResolved && got.Status.FQDN != nil
			}, timeout, interval).Should(BeTrue())

			got := &kubizonev1alpha1.Record{}
			Expect(k8sClient.Get(ctx, recordKey, got)).To(Succeed())
			Expect(got.Labels[kubizonev1alpha1.ParentZoneLabel]).To(BeEmpty())
		})
	})

	Context("When a Record's type is not admitted by the matching delegation pattern", func() {
		It("denies the record", func() {
			ctx := context.Background()

			zone := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: "typed-zone", Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName: "typed.example.",
					Delegations: []kubizonev1alpha1.Delegation{
						{Records: []kubizonev1alpha1.RecordDelegation{{Pattern: "*.typed.example.", RecordTypes: []string{"A"}}}},
					},
				},
			}
			Expect(k8sClient.Create(ctx, zone)).To(Succeed())

			record := &kubizonev1alpha1.Record{
				ObjectMeta: metav1.ObjectMeta{Name: "wrong-type-record", Namespace: namespace},
				Spec: kubizonev1alpha1.RecordSpec{
					DomainName: "host",
					ZoneRef:    &kubizonev1alpha1.ZoneRef{Name: "typed-zone"},
					Type:       "AAAA",
					RData:      "2001:db8::1",
				},
			}
			Expect(k8sClient.Create(ctx, record)).To(Succeed())

			// A denied record is never written to: the denial only shows
			// up in the resolution metric, and status stays empty.
			Eventually(func() float64 {
				return getResolutionMetric("Record", "wrong-type-record", namespace, reasonDelegationDenied)
			}, timeout, interval).Should(Equal(1.0))

			recordKey := types.NamespacedName{Name: "wrong-type-record", Namespace: namespace}
			got := &kubizonev1alpha1.Record{}
			Expect(k8sClient.Get(ctx, recordKey, got)).To(Succeed())
			Expect(got.Status.FQDN).To(BeNil())
			Expect(got.Status.Conditions).To(BeEmpty())
			Expect(got.Labels[kubizonev1alpha1.ParentZoneLabel]).To(BeEmpty())
		})
	})
})
