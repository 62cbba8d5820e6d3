// Package html extracts the title and readable text of scheme web pages.
package html
