/*
Package dawg is an implementation of a Directed Acyclic Word Graph over byte
strings. It is the key store behind the reading dictionary: every key is an
opaque sequence of bytes, so keys may contain any byte value, including 0x00
and 0xFF.

A DAWG provides fast lookup of all keys beginning with a prefix, all keys that
are a prefix of a string, and the index number of any key (its rank in sorted
order).

The storage format is as small as possible. Bits are used instead of bytes so
that no space is wasted as padding. A summary of the data format is found at
the top of disk.go. The payload is followed by an xxhash64 checksum, which
Load verifies together with the node structure before answering any query.

To build a DAWG, either call Build with an unordered list of keys, or create a
builder using New() and Add keys in strictly increasing byte order. Finish
returns a Finder, which answers queries and can Save itself to disk. Load
memory maps a saved file and accesses the structure in place.
*/
package dawg
