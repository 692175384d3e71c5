package ratejson

//Package ratejson implements the serialization of gorate data types to JSON,
//so results can be stored and read again, or passed to programs written in
//other languages. Energies that are not finite numbers cannot be represented
//in JSON, so they are written as the string "<not serializable>". When read back,
//that string gives an absent value.
//Files with names ending in .zst are compressed with z-standard, files
//ending in .gz, with gzip.
