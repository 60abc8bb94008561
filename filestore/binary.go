package filestore

// BinaryStore is a [Store] of opaque binary values.
//
// It is the interface implemented by storage drivers. Stores of other types
// are built atop a BinaryStore using [NewMarshalingStore].
type BinaryStore = Store[[]byte]

// BinaryEntry is an [Entry] within a [BinaryStore].
type BinaryEntry = Entry[[]byte]
