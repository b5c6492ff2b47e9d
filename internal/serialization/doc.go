// Package serialization stores network parameters in the SafeTensors format.
//
// Every tensor is a two-dimensional float64 matrix written as "F64":
//
//	Format Structure:
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON object, tensor name -> {dtype, shape, data_offsets}]
//	  [Tensor data: little-endian float64, tensors in sorted name order]
//
// The optional "__metadata__" entry carries string pairs. The writer always
// records a "sha256" entry over the data section, and the reader rejects files
// whose data no longer matches it. Tensors must tile the data section with
// no gaps or overlaps, as the SafeTensors layout requires.
//
// Example usage:
//
//	tensors := map[string]*mat.Dense{"layers.0.weights": w}
//	if err := serialization.WriteSafeTensors("net.safetensors", tensors, nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	file, err := serialization.ReadSafeTensors("net.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	w = file.Tensors["layers.0.weights"]
package serialization
