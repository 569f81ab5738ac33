//go:build !linux

package app

func setProcessTitle(string) error { return nil }
