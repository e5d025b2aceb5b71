/*
Package session hosts many navigation controllers side by side.

Each session owns a controller, its graph and its model, and is addressed by
a generated id. Per-session locks serialize compound operations (for example
"next, then snapshot") issued by concurrent callers such as HTTP handlers.
*/
package session
