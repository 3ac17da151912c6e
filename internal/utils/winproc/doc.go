// Package winproc holds lazily bound Win32 procedures that lxn/win does not
// wrap.
package winproc
