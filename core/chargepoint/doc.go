// Package chargepoint sends central system operations to charge points and
// tracks their responses.
//
// Every operation follows the same pipeline. Parameters are validated, the
// request is built once and shared by all recipients, one client is made per
// recipient endpoint, the task is registered, and each recipient is sent the
// request asynchronously. The task id is returned without waiting for any
// response. Callers poll the task store for progress.
package chargepoint
