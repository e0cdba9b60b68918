package metaset

// Package metaset provides:
//
// - Ordered schemas parsed from model documents carrying a "__meta__" block
// - Two-pass entry validation with a stable violation model (field, code, message)
// - Zero-valued entry construction from a schema (NewEntry)
// - Chunked streaming over large JSON record arrays via ArrayReader
// - Atomic saves with timestamped backups (SaveFile)
//
// Design policy:
// - Keep only public APIs in the root package; put token decoding under internal/.
// - Place the builder under dsl/, the wire codec under codec/, YAML model import
//   under yamlschema/, and the CLI under cmd/metaset.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s, err := metaset.LoadSchemaFile("people.json")
//	entries, err := metaset.LoadDataFile("people.json")
//	for i, e := range entries {
//		if v := s.ValidateEntry(e); len(v) > 0 { ... }
//	}
//
//	r, err := metaset.StreamArrayFile("people.json", metaset.ReadOpt{ChunkSize: 500})
//	defer r.Close()
//	for {
//		chunk, err := r.Next()
//		if err == io.EOF { break }
//		...
//	}
