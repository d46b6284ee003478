// Package addbook lets staff put a book into the catalog together with its initial number of copies.
package addbook
