// Package cache provides a disk-backed cache for synthesized speech
// audio. Entries are content-addressed by voice label and text, stored
// as flat files alongside a plaintext sidecar, and aged out by a
// throttled janitor based on last-access time.
package cache
