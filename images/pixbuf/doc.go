// Package pixbuf grants scoped, exclusive access to pixel memory owned by
// someone else, in the shape kernels.BufferProvider expects.
//
// A provider hands out at most one lease at a time. Acquire fails with
// kernels.ErrBufferAccess while a lease is outstanding, and Release fails the
// same way when nothing is held.
package pixbuf
