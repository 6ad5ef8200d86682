// Package textutil holds small string helpers shared by packages that turn
// release metadata into file names.
package textutil
