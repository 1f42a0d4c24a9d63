// Package testsupport provides shared helpers for package tests: temp-dir
// configs that pass validation and ledger stores with registered cleanup.
package testsupport
