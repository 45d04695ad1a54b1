// Package registry discovers agent definitions in the project and user
// agents directories. Sources are searched in priority order; a project
// agent shadows a user agent with the same name.
package registry
