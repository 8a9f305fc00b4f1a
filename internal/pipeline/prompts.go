package pipeline

// testArtifactPrompt asks whether a note was produced while testing the
// capture app. The guidance biases towards keeping notes.
const testArtifactPrompt = `You are an expert in analyzing file content and structure. Your task is to determine if the following string is from a test file. Return 'True' if the content is likely produced during testing, 'False' if it is a genuine input, and 'Unknown' if it is difficult to tell.

Guidelines:
1. Assume files are non-test unless there are clear indications they are test files.
2. Flag files as test files if the content is nonsensical or explicitly mentions testing. Merely mentioning 'test' is not enough.
3. Consider any coherent extended text as a non-test file.

Examples:
- Real file: 'An early background function for vonUKU can be recognizing and deleting (binning) test cases from portal development.'
- Test files: 'test again with the button', 'Test multi line input'
- Ambiguous: 'Does the text input area work now?' (This was a test file, but it's not obvious.)

Evaluate the following`

const followupPrompt = `You are an expert at analyzing the content and structure of files. Can you generate a list of follow-up questions based on the following file content? Each question should be on a separate line and start with a dash (-).
The file content is:`
