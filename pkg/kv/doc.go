/*
Package kv is llrbkv's database facade: the thin object an application
actually holds, wrapping a block store and a persistent tree behind
get/set/delete/commit/close.

Connect opens (or creates) a single backing file and returns a *DB. After
Close, Get, Set, Delete, Commit and RootKey return ErrClosed; a second Close
returns nil and Stats returns a zero Stats. The facade does not know about
red-black balancing or block layout; it only sequences calls into package
llrb and translates its errors into the public sentinel taxonomy.
*/
package kv
