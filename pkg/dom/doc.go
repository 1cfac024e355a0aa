// Package dom defines the small document model the optimizers work against
// and an HTML implementation of it.
//
// Document, Element and Observer mirror the browser APIs the optimizers need
// (querySelectorAll, classList, style custom properties, IntersectionObserver)
// so the same logic can run against a parsed HTML page on the server or
// against a bridge to a live browser.
//
// HTMLDocument wraps a goquery document; Parse and Render round-trip a page.
// NativeLazyObserver stands in for IntersectionObserver on the server by
// reporting elements as visible and delegating the deferral to the browser's
// native loading="lazy".
package dom
