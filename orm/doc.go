/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
Each bucket holds one type of model, addressed by its primary key.
Models are serialized with the codec package before they are stored.

Sequences provide monotonically increasing identifiers and KeySets keep
enumerable collections of keys, such as all editions held by an owner,
so that they can be listed with Paginate.
*/
package orm
