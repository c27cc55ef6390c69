// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package apierr defines the error taxonomy shared by the cache and task
// clients and the uniform result envelope rendered by commands.
package apierr
