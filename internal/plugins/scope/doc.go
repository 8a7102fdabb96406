// SPDX-License-Identifier: MPL-2.0

// Package scope provides the persisted-scope capability: filesystem scope
// grants made while the application runs are saved under the data
// directory and restored on the next start.
package scope
