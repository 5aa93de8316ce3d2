// SPDX-License-Identifier: MPL-2.0

// Package config loads, validates, and edits the sheldon plugins
// configuration file. It owns the data model consumed by the lock package:
// an ordered plugin list, each plugin with a normalized source descriptor,
// file-selection patterns, and template names.
package config
