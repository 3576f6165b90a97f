// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// amounts are 8 byte big endian blobs, sqlite integers are signed
const receiptTableSchema = `
create table if not exists receipt (
	seq integer primary key autoincrement,
	id blob(32),
	kind text,
	caller blob(20),
	time integer
);

CREATE INDEX if not exists receiptIDIndex on receipt(id);
`

const eventTableSchema = `
create table if not exists event (
	seq integer primary key autoincrement,
	receiptID blob(32),
	eventIndex integer,
	time integer,
	kind text,
	caller blob(20),
	name text,
	subject blob(32),
	account blob(20),
	amount blob(8)
);

CREATE INDEX if not exists eventTimeIndex on event(time);
CREATE INDEX if not exists eventNameIndex on event(name);
CREATE INDEX if not exists eventSubjectIndex on event(subject);
CREATE INDEX if not exists eventAccountIndex on event(account);
`

const transferTableSchema = `
create table if not exists transfer (
	seq integer primary key autoincrement,
	receiptID blob(32),
	transferIndex integer,
	time integer,
	caller blob(20),
	sender blob(20),
	recipient blob(20),
	amount blob(8)
);

CREATE INDEX if not exists transferTimeIndex on transfer(time);
CREATE INDEX if not exists transferReceiptIndex on transfer(receiptID);
CREATE INDEX if not exists transferSenderIndex on transfer(sender);
CREATE INDEX if not exists transferRecipientIndex on transfer(recipient);
`
