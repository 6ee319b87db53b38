// Package utils provides request validation helpers shared by the transports.
package utils
