// Package staging finds and removes conversion workspaces that outlived
// their job, for example after the process was killed mid-conversion.
package staging
