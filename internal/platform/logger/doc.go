// Package logger provides structured logging setup for the service.
package logger
