// Package ginchmod adapts goChmod permission checks to gin routers.
package ginchmod
