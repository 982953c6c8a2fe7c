// Package gpucore provides the GPU abstractions shared by bindkit.
//
// This package defines the [Context] interface, which abstracts over the GPU
// API layer, together with the binding descriptors exchanged with it:
//   - [BindGroupVariable]: kind, binding index and array count of a shader binding
//   - [BindGroupLayoutDesc], [BindTableLayoutDesc]: per-set layouts, per stage
//   - [BindingInfo]: a single resource at a binding index ("Binding")
//   - [IndexedBindingInfo]: an array of resources at a base binding ("IndexedBinding")
//
// # Architecture
//
//	          +-------------------------+
//	          |  reserve / pool / recipe |
//	          +------------+------------+
//	                       |
//	               gpucore.Context
//	                       |
//	         +-------------+-------------+
//	         |                           |
//	+--------v--------+        +---------v--------+
//	| backend/native  |        | backend/software |
//	|  (wgpu hal)     |        |  (host memory)   |
//	+-----------------+        +------------------+
//
// # Resource Management
//
// GPU objects are managed via opaque IDs ([BufferID], [BindGroupID], etc.).
// Implementations are responsible for tracking the mapping between IDs and
// actual GPU objects.
//
// # Mapping
//
// Host writes are scoped: [Context.MapBuffer] returns a view, the caller
// writes it, and [Context.UnmapBuffer] publishes it before the GPU reads the
// buffer. [WriteBuffer] performs the whole sequence.
package gpucore
