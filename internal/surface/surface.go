// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package surface holds what the concrete map surfaces share.
package surface

import "errors"

// ErrClosed is returned by surface operations after Close.
var ErrClosed = errors.New("map surface is closed")
