// Package platform provides the atomic whole-file write used when publishing
// agent definitions. Permission bits are applied everywhere except Windows.
package platform
