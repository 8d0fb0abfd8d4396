/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

// Package config embeds the deployment manifests shipped with the operator
// binary, so the CRD subcommands work without a checkout of this repository.
package config

import "embed"

// CRDs holds the CustomResourceDefinition manifests under crd/bases.
//
//go:embed crd/bases/*.yaml
var CRDs embed.FS
