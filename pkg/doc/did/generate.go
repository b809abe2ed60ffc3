/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

//go:generate mockgen -destination ../../mock/vdr/mock_resolver.go -package vdr . Resolver
