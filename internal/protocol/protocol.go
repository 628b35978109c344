/*
Package protocol encodes replay catalog requests and decodes catalog responses.

REQUEST LAYOUT:
===============

	92 95 <token> 02 a5 "0.0.8" 03        envelope, client version
	95 01 <page u8> <count u8>            catalog query, page index, replay count
	94 ff <min floor> <max floor> <chars> filter: any player, floor bounds, character filter
	01                                    newest first

<chars> is 90 when unfiltered and 91 <character> otherwise.

RESPONSE LAYOUT:
================

	[60 bytes] page header, ignored
	record*

Each record:

	9e 01                                 record prefix
	<floor> <p1 character> <p2 character>
	player block (P1)
	92 02                                 player 2 sentinel
	player block (P2)
	<winner>                              01 = P1, 02 = P2
	b3 "2006-01-02 15:04:05"              UTC timestamp
	c0 ff ff                              terminator

Player block:

	b2 <18 ASCII digits>                  player id
	a0|n <n bytes> or d9 <n> <n bytes>    name
	aa <10 bytes> <platform>              online id, not exposed

Names are free text and are not escaped, so a name may contain the terminator.
The segmenter only splits where the terminator is followed by a record prefix
or the end of the page; the decoder rejects anything that does not parse.
*/
package protocol

import "time"

const (
	HeaderSize = 60

	playerIDLen   = 18
	onlineIDLen   = 10
	timestampLen  = 19
	maxFixStrLen  = 0x1f
	timestampForm = "2006-01-02 15:04:05"

	markerPlayerID  byte = 0xb2
	markerOnlineID  byte = 0xaa
	markerTimestamp byte = 0xb3
	markerFixStr    byte = 0xa0
	markerStr8      byte = 0xd9

	winnerP1 byte = 0x01
	winnerP2 byte = 0x02
)

var (
	RecordPrefix = []byte{0x9e, 0x01}
	Terminator   = []byte{0xc0, 0xff, 0xff}
	P2Sentinel   = []byte{0x92, 0x02}

	clientVersion = "0.0.8"
)

var (
	minTimestamp = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	maxTimestamp = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)
