// Package domain defines the core domain types for the rackwire cabling
// calculation and validation engine.
//
// This package contains the manifest model (racks, ToRs, spine, nodes, site
// geometry), the derived link and BOM types, and the reporting model shared
// by every engine. Types here are pure data: all behavior that interprets
// them lives in the engine package, so that calculation, validation,
// cross-validation, and roundtrip all observe identical semantics.
package domain
